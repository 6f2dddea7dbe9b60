package normalize

import (
	"sort"
	"strings"
	"time"

	"catalog-sync-api/internal/model"
)

// RecentlyAddedTag is attached while a product is inside the recency window.
const RecentlyAddedTag = "Recently Added"

// DefaultRecentWindow is how long a product counts as recently added.
const DefaultRecentWindow = 30 * 24 * time.Hour

// TagGroup maps a set of raw specifics keys to one tag prefix. A key belongs
// to at most one group; groups are checked in declaration order and the first
// match wins.
type TagGroup struct {
	Prefix string
	Keys   []string
}

// DefaultTagGroups are the canonical dimensions used to build display tags,
// e.g. Brand:Rado, Material:Ceramic, Era:1970s, Origin:Japan.
var DefaultTagGroups = []TagGroup{
	{Prefix: "Brand", Keys: []string{
		"Brand", "Maker", "Manufacturer", "Make", "Artist", "Author",
		"Sculptor", "Publisher", "Giuseppe Armani", "Lladro",
	}},
	{Prefix: "Model", Keys: []string{
		"Model", "Series", "Series Title", "Series/Movie", "Product Line",
		"Game Title", "Movie/TV Title", "TV Show", "TV/Streaming Show", "Book Series",
	}},
	{Prefix: "Material", Keys: []string{
		"Material", "Primary Material", "Case Material", "Band Material",
		"Handle Material", "Handle/Strap Material", "Metal", "Metal Purity",
		"Glass Type", "Glassware Type", "Porcelain Type", "Production Style",
		"Production Technique", "Surface Coating",
	}},
	{Prefix: "Color", Keys: []string{
		"Color", "Colour", "Main Color", "Exterior Color", "Band Color",
		"Case Color", "Dial Color", "Lens Color", "Frame Color",
		"Lining Color", "Light Color", "Cord Color", "Blade Color",
	}},
	{Prefix: "Era", Keys: []string{
		"Decade", "Era", "Time Period", "Time Period Manufactured",
		"Time Period Produced", "Historical Period", "Year Manufactured",
		"Year of Manufacture", "Year", "Year Issued", "Year Printed",
		"Publication Year", "Release Year", "Date of Origin", "Date of Creation",
		"Post-WWII", "Victorian", "Mid-20th century", "early 1900",
	}},
	{Prefix: "Origin", Keys: []string{
		"Country of Origin", "Country/Region of Origin", "Place of Origin",
		"Region", "Region of Origin", "Country", "Country/Region",
		"Country of Manufacture", "Place of Publication", "Culture",
		"Ethnic & Regional Style", "Tribal Affiliation", "Tribe", "Origin",
	}},
	{Prefix: "Style", Keys: []string{
		"Style", "Look", "Occasion", "Season", "Holiday", "Room",
		"Jewelry Department", "Department",
	}},
	{Prefix: "Movement", Keys: []string{
		"Movement", "Escapement Type",
	}},
	{Prefix: "Category", Keys: []string{
		"Object Type", "Product Type", "Product", "Collection",
		"Game Type", "Sport", "Sport/Activity", "Type",
		"Type of Advertising", "Type of Glass", "Type of Tool",
	}},
	{Prefix: "Stone", Keys: []string{
		"Main Stone", "Main Stone Color", "Main Stone Shape",
		"Secondary Stone", "Total Carat Weight", "Diamond Clarity Grade",
		"Diamond Color Grade", "Cut Grade",
	}},
	{Prefix: "Feature", Keys: []string{
		"Features", "Special Features", "Special Attributes", "Limited Edition",
		"Retired", "Handmade", "Autographed", "Signed", "Signed By", "Signed by",
		"Certificate of Authenticity (COA)", "Certification",
	}},
	{Prefix: "Size", Keys: []string{
		"Size", "Length", "Height", "Width (Inches)", "Diameter",
		"Ring Size", "Necklace Length", "Case Size", "Lug Width",
		"Band Width", "Max Wrist Size", "Item Length", "Item Height",
		"Item Width", "Item Diameter", "Scale",
	}},
	{Prefix: "Theme", Keys: []string{
		"Theme", "Subject", "Subject/Theme", "Topic",
		"Franchise", "Character", "Character Family",
		"Character/Story/Theme", "Superhero Team",
	}},
	{Prefix: "Sport", Keys: []string{
		"League", "Team", "Team-Baseball",
		"Event/Tournament", "Player", "Player/Athlete",
	}},
	{Prefix: "Room", Keys: []string{"Room"}},
}

// DefaultTagIgnoreValues are values that never become tags.
var DefaultTagIgnoreValues = []string{
	"", "No", "Not Water Resistant", "Unknown", "N/A", "na", "NA", "None",
}

// TagConfig supplies the grouping tables for tag synthesis.
type TagConfig struct {
	Groups       []TagGroup
	IgnoreValues []string
	RecentWindow time.Duration
}

// TagSynthesizer derives a flat, sorted, deduplicated display tag set from raw
// item specifics plus taxonomy and recency signals.
type TagSynthesizer struct {
	groups       []TagGroup
	keyToPrefix  map[string]string
	ignore       map[string]bool
	recentWindow time.Duration
}

// NewTagSynthesizer creates a synthesizer. Nil config fields fall back to the
// defaults.
func NewTagSynthesizer(cfg TagConfig) *TagSynthesizer {
	groups := cfg.Groups
	if groups == nil {
		groups = DefaultTagGroups
	}
	ignoreValues := cfg.IgnoreValues
	if ignoreValues == nil {
		ignoreValues = DefaultTagIgnoreValues
	}
	window := cfg.RecentWindow
	if window == 0 {
		window = DefaultRecentWindow
	}

	// First group to claim a key wins, matching the fixed check order.
	keyToPrefix := make(map[string]string)
	for _, g := range groups {
		for _, k := range g.Keys {
			lk := strings.ToLower(k)
			if _, taken := keyToPrefix[lk]; !taken {
				keyToPrefix[lk] = g.Prefix
			}
		}
	}

	ignore := make(map[string]bool, len(ignoreValues))
	for _, v := range ignoreValues {
		ignore[strings.ToLower(v)] = true
	}

	return &TagSynthesizer{
		groups:       groups,
		keyToPrefix:  keyToPrefix,
		ignore:       ignore,
		recentWindow: window,
	}
}

// Synthesize builds the tag set for one product. The result is sorted and
// deduplicated so identical inputs always produce byte-identical tag lists.
func (s *TagSynthesizer) Synthesize(specifics map[string][]string, tax model.Taxonomy, firstSeenAt, now time.Time) []string {
	set := make(map[string]bool)

	for rawKey, values := range specifics {
		prefix, ok := s.keyToPrefix[strings.ToLower(strings.TrimSpace(rawKey))]
		if !ok {
			continue // noisy one-offs stay out of the tag set
		}
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" || s.ignore[strings.ToLower(v)] {
				continue
			}
			set[prefix+":"+v] = true
		}
	}

	if tax.Root != "" {
		set["Domain:"+tax.Root] = true
	}
	for _, ancestor := range tax.Ancestors {
		set["Category:"+ancestor] = true
	}

	if !firstSeenAt.IsZero() && now.UTC().Sub(firstSeenAt.UTC()) <= s.recentWindow {
		set[RecentlyAddedTag] = true
	}

	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
