// Package i18n holds the localized templates used for generated companion
// text.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// BannerBonusKey is the catalog key of the banner-item tooltip. The template
// is a fixed prefix with the source entity's display name appended.
const BannerBonusKey = "CommonItemTooltip.BannerBonus"

var bannerBonus = map[language.Tag]string{
	language.English:             "Nearby players get a bonus against: %s",
	language.German:              "Spieler in der Nähe erhalten einen Bonus gegen: %s",
	language.French:              "Les joueurs à proximité reçoivent un bonus contre : %s",
	language.Spanish:             "Los jugadores cercanos reciben una bonificación contra: %s",
	language.BrazilianPortuguese: "Jogadores próximos recebem um bônus contra: %s",
	language.Russian:             "Игроки поблизости получают бонус против: %s",
	language.SimplifiedChinese:   "附近的玩家针对以下情况获得加成：%s",
	language.Polish:              "Pobliscy gracze otrzymują premię przeciwko: %s",
	language.Italian:             "I giocatori nelle vicinanze ottengono un bonus contro: %s",
}

// Catalog resolves tooltip templates for a locale, falling back to English.
type Catalog struct {
	builder *catalog.Builder
	matcher language.Matcher
	tags    []language.Tag
}

// NewCatalog builds the tooltip catalog.
func NewCatalog() (*Catalog, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	tags := []language.Tag{language.English}
	for tag, msg := range bannerBonus {
		if err := b.SetString(tag, BannerBonusKey, msg); err != nil {
			return nil, fmt.Errorf("i18n: %s: %w", tag, err)
		}
		if tag != language.English {
			tags = append(tags, tag)
		}
	}
	return &Catalog{builder: b, matcher: language.NewMatcher(tags), tags: tags}, nil
}

// MustCatalog panics if the built-in catalog cannot be assembled.
func MustCatalog() *Catalog {
	c, err := NewCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// Match resolves a locale string ("de", "pt-BR") to the closest supported tag.
func (c *Catalog) Match(locale string) language.Tag {
	trimmed := strings.TrimSpace(locale)
	if trimmed == "" {
		return language.English
	}
	requested, _, err := language.ParseAcceptLanguage(trimmed)
	if err != nil || len(requested) == 0 {
		return language.English
	}
	_, idx, conf := c.matcher.Match(requested...)
	if conf == language.No {
		return language.English
	}
	return c.tags[idx]
}

// BannerBonus renders the banner-item tooltip for the given display name.
func (c *Catalog) BannerBonus(locale, displayName string) string {
	p := message.NewPrinter(c.Match(locale), message.Catalog(c.builder))
	return p.Sprintf(BannerBonusKey, displayName)
}
