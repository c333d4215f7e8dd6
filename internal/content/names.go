package content

const (
	BannerSuffix     = "Banner"
	BannerItemSuffix = "BannerItem"
	CritterSuffix    = "Item"
)

// BannerName is the display companion name for an entity.
func BannerName(entity string) string { return entity + BannerSuffix }

// BannerItemName is the collectible that places the display companion.
func BannerItemName(entity string) string { return entity + BannerItemSuffix }

// CritterItemName is the collectible that releases the entity.
func CritterItemName(entity string) string { return entity + CritterSuffix }
