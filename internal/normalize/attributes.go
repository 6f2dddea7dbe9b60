package normalize

import (
	"strconv"
	"strings"

	"catalog-sync-api/internal/model"
)

// ValueType declares how a routed attribute value is coerced.
type ValueType int

const (
	TypeText ValueType = iota
	TypeBool
	TypeInt
	TypeDecimal
	TypeList
)

// Rule routes one raw specifics key into a namespaced, typed field.
// Rules are evaluated in declaration order; the first matching rule wins.
type Rule struct {
	Match     string // raw key, compared case-insensitively after trimming
	Namespace string
	Key       string
	Type      ValueType
}

// DomainRules holds the routing table and detection keywords for one product
// domain. Domains are checked in declaration order; the first whose keywords
// match the category or a specifics key wins.
type DomainRules struct {
	Domain   string
	Keywords []string
	Rules    []Rule
}

// Reserved namespaces.
const (
	// NamespaceRaw holds unmapped keys verbatim so nothing is silently dropped.
	NamespaceRaw = "raw"
	// NamespaceSystem carries pipeline-internal fields (detected domain).
	// It is never forwarded downstream.
	NamespaceSystem = "system"
)

// DefaultIgnoreValues are placeholder values suppressed at every type.
// "No" is deliberately not ignored here: it is a valid boolean value.
var DefaultIgnoreValues = []string{
	"", "N/A", "NA", "na", "n/a", "Unknown", "unknown", "None", "none",
	"Does Not Apply", "Not Specified",
}

// ClassifierTables supplies the routing configuration. Explicit construction
// keeps the tables swappable in tests.
type ClassifierTables struct {
	Universal    []Rule
	Domains      []DomainRules
	IgnoreValues []string
}

// DefaultUniversalRules route domain-independent keys.
var DefaultUniversalRules = []Rule{
	{Match: "Brand", Namespace: "general", Key: "brand", Type: TypeText},
	{Match: "Maker", Namespace: "general", Key: "maker", Type: TypeText},
	{Match: "Condition", Namespace: "general", Key: "condition", Type: TypeText},
	{Match: "Material", Namespace: "material", Key: "primary", Type: TypeText},
	{Match: "Primary Material", Namespace: "material", Key: "primary", Type: TypeText},
	{Match: "Color", Namespace: "general", Key: "color", Type: TypeText},
	{Match: "Colour", Namespace: "general", Key: "color", Type: TypeText},
	{Match: "Country of Origin", Namespace: "origin", Key: "country", Type: TypeText},
	{Match: "Country/Region of Origin", Namespace: "origin", Key: "country", Type: TypeText},
	{Match: "Country/Region of Manufacture", Namespace: "origin", Key: "country_of_manufacture", Type: TypeText},
	{Match: "Region of Origin", Namespace: "origin", Key: "region", Type: TypeText},
	{Match: "Year", Namespace: "antique", Key: "year", Type: TypeInt},
	{Match: "Year of Manufacture", Namespace: "antique", Key: "year", Type: TypeInt},
	{Match: "Time Period Manufactured", Namespace: "antique", Key: "period", Type: TypeText},
	{Match: "Age", Namespace: "antique", Key: "age", Type: TypeText},
	{Match: "Antique", Namespace: "antique", Key: "is_antique", Type: TypeBool},
	{Match: "Handmade", Namespace: "general", Key: "handmade", Type: TypeBool},
	{Match: "Vintage", Namespace: "general", Key: "vintage", Type: TypeBool},
	{Match: "Original/Reproduction", Namespace: "general", Key: "originality", Type: TypeText},
	{Match: "Features", Namespace: "general", Key: "features", Type: TypeList},
	{Match: "Style", Namespace: "general", Key: "style", Type: TypeText},
	{Match: "Theme", Namespace: "general", Key: "theme", Type: TypeList},
	{Match: "Height", Namespace: "dimensions", Key: "height", Type: TypeDecimal},
	{Match: "Width", Namespace: "dimensions", Key: "width", Type: TypeDecimal},
	{Match: "Length", Namespace: "dimensions", Key: "length", Type: TypeDecimal},
	{Match: "Diameter", Namespace: "dimensions", Key: "diameter", Type: TypeDecimal},
	{Match: "Weight", Namespace: "dimensions", Key: "weight", Type: TypeDecimal},
	{Match: "Unit Quantity", Namespace: "general", Key: "unit_quantity", Type: TypeInt},
	{Match: "Signed", Namespace: "general", Key: "signed", Type: TypeBool},
	{Match: "Signed By", Namespace: "general", Key: "signed_by", Type: TypeText},
}

// DefaultDomainRules route keys specific to one product domain. Order matters:
// the first domain whose keywords match wins.
var DefaultDomainRules = []DomainRules{
	{
		Domain:   "blade",
		Keywords: []string{"knife", "knives", "sword", "swords", "dagger", "blade", "blades", "bayonet", "razor", "machete"},
		Rules: []Rule{
			{Match: "Blade Material", Namespace: "blade", Key: "blade_material", Type: TypeText},
			{Match: "Blade Type", Namespace: "blade", Key: "blade_type", Type: TypeText},
			{Match: "Blade Edge", Namespace: "blade", Key: "edge", Type: TypeText},
			{Match: "Blade Length", Namespace: "blade", Key: "blade_length", Type: TypeDecimal},
			{Match: "Blade Color", Namespace: "blade", Key: "blade_color", Type: TypeText},
			{Match: "Handle Material", Namespace: "blade", Key: "handle_material", Type: TypeText},
			{Match: "Number of Blades", Namespace: "blade", Key: "blade_count", Type: TypeInt},
			{Match: "Lock Type", Namespace: "blade", Key: "lock_type", Type: TypeText},
			{Match: "Fixed Blade", Namespace: "blade", Key: "fixed_blade", Type: TypeBool},
		},
	},
	{
		Domain:   "book",
		Keywords: []string{"book", "books", "magazine", "magazines", "literature", "manuscript", "manuscripts", "map", "maps"},
		Rules: []Rule{
			{Match: "Author", Namespace: "book", Key: "author", Type: TypeText},
			{Match: "Publisher", Namespace: "book", Key: "publisher", Type: TypeText},
			{Match: "Publication Year", Namespace: "book", Key: "publication_year", Type: TypeInt},
			{Match: "Year Printed", Namespace: "book", Key: "year_printed", Type: TypeInt},
			{Match: "Place of Publication", Namespace: "book", Key: "place_of_publication", Type: TypeText},
			{Match: "Language", Namespace: "book", Key: "language", Type: TypeText},
			{Match: "Format", Namespace: "book", Key: "format", Type: TypeText},
			{Match: "Edition", Namespace: "book", Key: "edition", Type: TypeText},
			{Match: "Number of Pages", Namespace: "book", Key: "pages", Type: TypeInt},
			{Match: "Illustrated", Namespace: "book", Key: "illustrated", Type: TypeBool},
			{Match: "Topic", Namespace: "book", Key: "topics", Type: TypeList},
		},
	},
	{
		Domain:   "clock",
		Keywords: []string{"clock", "clocks", "watch", "watches", "timepiece", "barometer", "barometers"},
		Rules: []Rule{
			{Match: "Movement", Namespace: "clock", Key: "movement", Type: TypeText},
			{Match: "Escapement Type", Namespace: "clock", Key: "escapement", Type: TypeText},
			{Match: "Power Source", Namespace: "clock", Key: "power_source", Type: TypeText},
			{Match: "Chime", Namespace: "clock", Key: "chime", Type: TypeText},
			{Match: "Case Material", Namespace: "clock", Key: "case_material", Type: TypeText},
			{Match: "Case Size", Namespace: "clock", Key: "case_size", Type: TypeDecimal},
			{Match: "Dial Color", Namespace: "clock", Key: "dial_color", Type: TypeText},
			{Match: "Working", Namespace: "clock", Key: "working", Type: TypeBool},
			{Match: "With Key", Namespace: "clock", Key: "with_key", Type: TypeBool},
		},
	},
	{
		Domain:   "art",
		Keywords: []string{"art", "painting", "paintings", "sculpture", "sculptures", "print", "prints", "lithograph", "etching", "figurine", "figurines"},
		Rules: []Rule{
			{Match: "Artist", Namespace: "art", Key: "artist", Type: TypeText},
			{Match: "Sculptor", Namespace: "art", Key: "sculptor", Type: TypeText},
			{Match: "Subject", Namespace: "art", Key: "subject", Type: TypeList},
			{Match: "Medium", Namespace: "art", Key: "medium", Type: TypeText},
			{Match: "Original/Licensed Reprint", Namespace: "art", Key: "originality", Type: TypeText},
			{Match: "Date of Creation", Namespace: "art", Key: "date_of_creation", Type: TypeText},
			{Match: "Framed", Namespace: "art", Key: "framed", Type: TypeBool},
			{Match: "Limited Edition", Namespace: "art", Key: "limited_edition", Type: TypeBool},
			{Match: "Edition Size", Namespace: "art", Key: "edition_size", Type: TypeInt},
		},
	},
	{
		Domain:   "militaria",
		Keywords: []string{"militaria", "military", "war", "army", "navy", "wwi", "wwii", "medal", "medals", "uniform", "uniforms"},
		Rules: []Rule{
			{Match: "Conflict", Namespace: "militaria", Key: "conflict", Type: TypeText},
			{Match: "Service", Namespace: "militaria", Key: "service", Type: TypeText},
			{Match: "Force", Namespace: "militaria", Key: "force", Type: TypeText},
			{Match: "Rank", Namespace: "militaria", Key: "rank", Type: TypeText},
			{Match: "Issued/Not-Issued", Namespace: "militaria", Key: "issued", Type: TypeText},
			{Match: "Theme", Namespace: "militaria", Key: "theme", Type: TypeList},
		},
	},
}

// AttributeClassifier routes raw item specifics into namespaced structured
// metadata with type coercion.
type AttributeClassifier struct {
	universal []Rule
	domains   []DomainRules
	ignore    map[string]bool
}

// NewAttributeClassifier creates a classifier. Nil table fields fall back to
// the defaults.
func NewAttributeClassifier(tables ClassifierTables) *AttributeClassifier {
	universal := tables.Universal
	if universal == nil {
		universal = DefaultUniversalRules
	}
	domains := tables.Domains
	if domains == nil {
		domains = DefaultDomainRules
	}
	ignoreValues := tables.IgnoreValues
	if ignoreValues == nil {
		ignoreValues = DefaultIgnoreValues
	}

	ignore := make(map[string]bool, len(ignoreValues))
	for _, v := range ignoreValues {
		ignore[strings.ToLower(v)] = true
	}

	return &AttributeClassifier{universal: universal, domains: domains, ignore: ignore}
}

// InferDomain token-matches the category and specifics keys against each
// domain's keyword set, in domain priority order. No match is a valid outcome
// and returns "".
func (c *AttributeClassifier) InferDomain(category string, specifics map[string][]string) string {
	tokens := make(map[string]bool)
	for _, t := range tokenize(category) {
		tokens[t] = true
	}
	for key := range specifics {
		for _, t := range tokenize(key) {
			tokens[t] = true
		}
	}

	for _, d := range c.domains {
		for _, kw := range d.Keywords {
			if tokens[kw] {
				return d.Domain
			}
		}
	}
	return ""
}

// Classify routes every raw key through the universal table, then the detected
// domain's table. Unmapped keys are preserved verbatim under raw.attributes.
// The detected domain lands under the system namespace for debugging; callers
// must strip that namespace before sending anything downstream.
func (c *AttributeClassifier) Classify(category string, specifics map[string][]string) model.Attributes {
	domain := c.InferDomain(category, specifics)

	var domainRules []Rule
	for _, d := range c.domains {
		if d.Domain == domain {
			domainRules = d.Rules
			break
		}
	}

	out := model.Attributes{}
	leftovers := map[string]string{}

	for rawKey, values := range specifics {
		key := strings.TrimSpace(rawKey)
		rule, ok := matchRule(key, c.universal)
		if !ok {
			rule, ok = matchRule(key, domainRules)
		}
		if !ok {
			if v := strings.TrimSpace(strings.Join(values, "; ")); v != "" {
				leftovers[key] = v
			}
			continue
		}

		coerced, ok := c.coerce(rule.Type, values)
		if !ok {
			continue // unclassifiable value, dropped by policy
		}

		if out[rule.Namespace] == nil {
			out[rule.Namespace] = map[string]interface{}{}
		}
		out[rule.Namespace][rule.Key] = coerced
	}

	if len(leftovers) > 0 {
		out[NamespaceRaw] = map[string]interface{}{"attributes": leftovers}
	}

	out[NamespaceSystem] = map[string]interface{}{"domain": domain}

	return out
}

func matchRule(key string, rules []Rule) (Rule, bool) {
	for _, r := range rules {
		if strings.EqualFold(key, r.Match) {
			return r, true
		}
	}
	return Rule{}, false
}

// coerce converts raw values per the declared type. A false return means the
// value is unclassifiable and the field is dropped, never an error.
func (c *AttributeClassifier) coerce(t ValueType, values []string) (interface{}, bool) {
	switch t {
	case TypeBool:
		v, ok := c.firstUsable(values)
		if !ok {
			return nil, false
		}
		switch strings.ToLower(v) {
		case "yes", "true", "y", "1":
			return true, true
		case "no", "false", "n", "0":
			return false, true
		}
		return nil, false

	case TypeInt:
		v, ok := c.firstUsable(values)
		if !ok {
			return nil, false
		}
		n, err := strconv.ParseInt(cleanNumber(v), 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true

	case TypeDecimal:
		v, ok := c.firstUsable(values)
		if !ok {
			return nil, false
		}
		v = cleanNumber(v)
		if !plainNumber(v) {
			return nil, false
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, false
		}
		return f, true

	case TypeList:
		var list []string
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" || c.ignore[strings.ToLower(v)] {
				continue
			}
			list = append(list, v)
		}
		if len(list) == 0 {
			return nil, false
		}
		return list, true

	default: // TypeText
		v, ok := c.firstUsable(values)
		if !ok {
			return nil, false
		}
		return v, true
	}
}

// firstUsable returns the first trimmed value not on the ignore-set.
func (c *AttributeClassifier) firstUsable(values []string) (string, bool) {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || c.ignore[strings.ToLower(v)] {
			continue
		}
		return v, true
	}
	return "", false
}

// plainNumber reports whether s is a plain decimal number: optional leading
// minus, digits, at most one dot. ParseFloat alone also accepts "inf", "NaN",
// hex and exponent forms, which must never land in structured metadata
// (a non-finite value cannot even be JSON-marshaled for storage).
func plainNumber(s string) bool {
	digits := false
	dot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = true
		case r == '-' && i == 0:
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits
}

// cleanNumber strips thousands separators and surrounding junk ("1,200" -> "1200").
func cleanNumber(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}

// tokenize lowercases and splits on non-alphanumeric boundaries.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}
