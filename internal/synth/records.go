package synth

import (
	"github.com/kingrea/companions/internal/content"
	"github.com/kingrea/companions/internal/marker"
)

// DisplayRecord builds the placeable display companion for def.
func DisplayRecord(def *content.Definition) content.Record {
	return content.Record{
		ID:        content.None,
		Tenant:    def.Tenant,
		Name:      content.BannerName(def.Name),
		Category:  content.CategoryDisplay,
		Variant:   marker.KindBanner,
		Source:    def.Type,
		SourceKey: def.FullName(),
		Place:     content.None,
		Texture:   def.Texture + content.BannerSuffix,
	}
}

// BannerItemRecord builds the collectible that places the display companion
// registered as place.
func BannerItemRecord(def *content.Definition, place content.ID, tooltip string) content.Record {
	return content.Record{
		ID:        content.None,
		Tenant:    def.Tenant,
		Name:      content.BannerItemName(def.Name),
		Category:  content.CategoryCollectible,
		Variant:   marker.KindBanner,
		Source:    def.Type,
		SourceKey: def.FullName(),
		Place:     place,
		Texture:   def.Texture + content.BannerItemSuffix,
		Tooltip:   tooltip,
	}
}

// CritterRecord builds the collectible that releases def. Value and rarity
// are copied from m unchanged.
func CritterRecord(def *content.Definition, m marker.Marker) content.Record {
	return content.Record{
		ID:        content.None,
		Tenant:    def.Tenant,
		Name:      content.CritterItemName(def.Name),
		Category:  content.CategoryCollectible,
		Variant:   marker.KindCritter,
		Source:    def.Type,
		SourceKey: def.FullName(),
		Place:     content.None,
		Texture:   def.Texture + content.CritterSuffix,
		Value:     m.Value,
		Rarity:    m.Rarity,
	}
}
