package vegetation

import (
	"fmt"
	"strings"
)

// Domain selects the vegetation index formula.
type Domain int

const (
	DomainStandard Domain = iota
	DomainPurple
	DomainVariegated
	DomainSucculent
	DomainFlowering
	DomainNursery
	numDomains
)

var domainNames = [numDomains]string{
	DomainStandard:   "standard",
	DomainPurple:     "purple",
	DomainVariegated: "variegated",
	DomainSucculent:  "succulent",
	DomainFlowering:  "flowering",
	DomainNursery:    "nursery",
}

func (d Domain) String() string {
	if d < 0 || d >= numDomains {
		return fmt.Sprintf("Domain(%d)", int(d))
	}
	return domainNames[d]
}

// MarshalText encodes the domain by name.
func (d Domain) MarshalText() ([]byte, error) {
	if d < 0 || d >= numDomains {
		return nil, fmt.Errorf("invalid domain %d", int(d))
	}
	return []byte(domainNames[d]), nil
}

// UnmarshalText decodes a domain name.
func (d *Domain) UnmarshalText(text []byte) error {
	for i, name := range domainNames {
		if name == string(text) {
			*d = Domain(i)
			return nil
		}
	}
	return fmt.Errorf("invalid domain %q", text)
}

// Profile bundles an index formula, its default threshold and the
// non-vegetation screens tuned for one kind of plant appearance.
type Profile struct {
	Key            string  `json:"key"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	IndexThreshold float64 `json:"index_threshold"`
	Domain         Domain  `json:"domain"`
	FilterFlowers  bool    `json:"filter_flowers"`
	FilterFabric   bool    `json:"filter_fabric"`
}

// DefaultProfileKey is used when no profile is requested.
const DefaultProfileKey = "standard"

var builtinProfiles = []Profile{
	{
		Key:            "standard",
		Name:           "Standard Green Foliage",
		Description:    "Green-leaved crops and shrubs. Greener than red reads as healthy.",
		IndexThreshold: 0.10,
		Domain:         DomainStandard,
	},
	{
		Key:            "purple",
		Name:           "Purple / Red Foliage",
		Description:    "Cultivars with purple or burgundy leaves, where red leads green when healthy.",
		IndexThreshold: 0.05,
		Domain:         DomainPurple,
	},
	{
		Key:            "variegated",
		Name:           "Variegated Foliage",
		Description:    "Leaves with cream or white margins. The index is damped on high color variance.",
		IndexThreshold: 0.05,
		Domain:         DomainVariegated,
	},
	{
		Key:            "succulent",
		Name:           "Succulents",
		Description:    "Blue-green, waxy plants that reflect more blue than leafy foliage.",
		IndexThreshold: 0.08,
		Domain:         DomainSucculent,
	},
	{
		Key:            "flowering",
		Name:           "Flowering Plants",
		Description:    "Plants in bloom. Blossoms and new growth are screened out; saturated pixels read neutral.",
		IndexThreshold: 0.10,
		Domain:         DomainFlowering,
		FilterFlowers:  true,
	},
	{
		Key:            "nursery",
		Name:           "Nursery Production",
		Description:    "Container stock on ground cloth. Fabric, shadow, blossoms and new growth are screened out.",
		IndexThreshold: 0.10,
		Domain:         DomainNursery,
		FilterFlowers:  true,
		FilterFabric:   true,
	},
}

// Profiles returns the built-in profiles in display order.
func Profiles() []Profile {
	out := make([]Profile, len(builtinProfiles))
	copy(out, builtinProfiles)
	return out
}

// ProfileKeys returns the keys of the built-in profiles.
func ProfileKeys() []string {
	keys := make([]string, len(builtinProfiles))
	for i, p := range builtinProfiles {
		keys[i] = p.Key
	}
	return keys
}

// LookupProfile returns the built-in profile for key (case-insensitive).
// An empty key selects DefaultProfileKey.
func LookupProfile(key string) (Profile, error) {
	if key == "" {
		key = DefaultProfileKey
	}
	for _, p := range builtinProfiles {
		if strings.EqualFold(p.Key, key) {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownProfile, key, strings.Join(ProfileKeys(), ", "))
}

// WithThreshold returns a copy of p using threshold t.
func (p Profile) WithThreshold(t float64) Profile {
	p.IndexThreshold = t
	return p
}
