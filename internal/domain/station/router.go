// Package station maps exam records to the functional area responsible for
// them and decides which records an acting role may see or edit. The mapping
// is a closed capability table built once at startup and consulted as pure
// data, so authorization never depends on free-text role matching.
package station

import (
	"github.com/occfit/occfit/internal/platform/errs"
)

// Role identifies a functional area of the clinic.
type Role string

const (
	RoleClinical   Role = "clinical"
	RoleAudiometry Role = "audiometry"
	RoleLaboratory Role = "laboratory"
	RoleRadiology  Role = "radiology"
	RolePsychology Role = "psychology"
	RolePhysician  Role = "physician"
	RoleAdmin      Role = "admin"

	// RoleParamedic is a legacy record tag still present in historical data.
	// It is routed to the clinical station and never acts on its own.
	RoleParamedic Role = "paramedic"
)

var actingRoles = map[Role]bool{
	RoleClinical:   true,
	RoleAudiometry: true,
	RoleLaboratory: true,
	RoleRadiology:  true,
	RolePsychology: true,
	RolePhysician:  true,
	RoleAdmin:      true,
}

var recordRoles = map[Role]bool{
	RoleClinical:   true,
	RoleAudiometry: true,
	RoleLaboratory: true,
	RoleRadiology:  true,
	RolePsychology: true,
	RolePhysician:  true,
	RoleParamedic:  true,
}

// Parse validates a role string supplied by the identity context.
func Parse(s string) (Role, error) {
	r := Role(s)
	if !actingRoles[r] {
		return "", errs.Permissionf("unknown acting role %q", s)
	}
	return r, nil
}

// ParseRecordRole validates a responsible-role tag on an exam record.
func ParseRecordRole(s string) (Role, error) {
	r := Role(s)
	if !recordRoles[r] {
		return "", errs.Validationf("unknown record role %q", s)
	}
	return r, nil
}

type capability struct {
	view bool
	edit bool
}

// Router resolves role capabilities against the closed table.
type Router struct {
	table map[Role]map[Role]capability
}

// NewRouter builds the capability table. Physician views and edits every
// record; admin views everything but edits no clinical content; each station
// views and edits its own records; clinical additionally covers the legacy
// paramedic tag.
func NewRouter() *Router {
	table := make(map[Role]map[Role]capability)

	for acting := range actingRoles {
		table[acting] = make(map[Role]capability)
	}

	for record := range recordRoles {
		table[RolePhysician][record] = capability{view: true, edit: true}
		table[RoleAdmin][record] = capability{view: true}
	}

	own := []Role{RoleClinical, RoleAudiometry, RoleLaboratory, RoleRadiology, RolePsychology}
	for _, r := range own {
		table[r][r] = capability{view: true, edit: true}
	}
	table[RoleClinical][RoleParamedic] = capability{view: true, edit: true}

	return &Router{table: table}
}

// CanView reports whether the acting role may see records tagged recordRole.
func (r *Router) CanView(acting, recordRole Role) bool {
	return r.table[acting][recordRole].view
}

// CanEdit reports whether the acting role may write records tagged recordRole.
func (r *Router) CanEdit(acting, recordRole Role) bool {
	return r.table[acting][recordRole].edit
}

// Elevated reports whether the role carries physician/admin capability, which
// allows annotating finalized records and reopening them.
func (r *Router) Elevated(acting Role) bool {
	return acting == RolePhysician || acting == RoleAdmin
}

// Visible filters record role tags down to those the acting role may see.
func (r *Router) Visible(acting Role, tags []Role) []Role {
	var out []Role
	for _, tag := range tags {
		if r.CanView(acting, tag) {
			out = append(out, tag)
		}
	}
	return out
}
