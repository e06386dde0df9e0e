// Package catalog defines the fixed set of ticket categories. The set is
// immutable for the process lifetime; only the responder role ids come from
// configuration.
package catalog

import (
	"github.com/spec-kit/ticket-bot/internal/domain"
)

type definition struct {
	key         string
	name        string
	description string
	emoji       string
	color       int
}

// Category metadata is fixed; responder roles are wired in at startup.
var definitions = []definition{
	{"general", "General Support", "Any questions or concerns generally related to Sweetsiez.", "💬", 0x3498db},
	{"discord", "Discord Support", "Discord-related problems such as Community Guidelines violations.", "🛡️", 0x5865f2},
	{"staff_report", "Staff Report", "Submit a report against a Low Rank (Trainee - Staff Assistant).", "📝", 0xe67e22},
	{"mr_report", "MR Report", "Submit a report against a MR Team Member (AS - GM). HR only.", "⚠️", 0xe74c3c},
	{"alliance", "Alliance Support", "Any general alliance inquiries.", "🤝", 0x9b59b6},
	{"executive", "Executive Support", "Contact our Executive Team for top serious matters.", "👔", 0x1abc9c},
	{"development", "Development Support", "Any development related issues (not suggestions).", "💻", 0x34495e},
	{"appeals", "Appeals", "Appeal your ban or consequence issued by our team.", "⚖️", 0xc0392b},
}

// Catalog is a static key -> Category lookup. No mutation after New.
type Catalog struct {
	byKey   map[string]domain.Category
	ordered []domain.Category
}

// New builds the catalog, attaching responder role ids per category key.
// Categories without a configured role id still exist; membership
// provisioning and role pings simply skip them.
func New(roleIDs map[string]string) *Catalog {
	c := &Catalog{byKey: make(map[string]domain.Category, len(definitions))}
	for _, def := range definitions {
		cat := domain.Category{
			Key:         def.key,
			Name:        def.name,
			Description: def.description,
			Emoji:       def.emoji,
			RoleID:      roleIDs[def.key],
			Color:       def.color,
		}
		c.byKey[cat.Key] = cat
		c.ordered = append(c.ordered, cat)
	}
	return c
}

// Get resolves a category key.
func (c *Catalog) Get(key string) (domain.Category, bool) {
	cat, ok := c.byKey[key]
	return cat, ok
}

// All returns the categories in panel display order.
func (c *Catalog) All() []domain.Category {
	out := make([]domain.Category, len(c.ordered))
	copy(out, c.ordered)
	return out
}
