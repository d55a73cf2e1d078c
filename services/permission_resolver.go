package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// EntityTypePlaceholder is substituted with the entity type name in every template.
const EntityTypePlaceholder = "{entity_type}"

type Operation string

const (
	OpCreate         Operation = "create"
	OpView           Operation = "view"
	OpViewAssigned   Operation = "view_assigned"
	OpUpdateAny      Operation = "update_any"
	OpUpdateAssigned Operation = "update_assigned"
	OpRevertAny      Operation = "revert_any"
	OpDeleteAny      Operation = "delete_any"
)

// PermissionTemplates maps each operation to the permissions it grants.
var PermissionTemplates = map[Operation][]string{
	OpCreate: {"create {entity_type}"},
	OpView: {
		"access {entity_type} overview",
		"view all {entity_type} revisions",
		"view any {entity_type}",
	},
	OpViewAssigned: {
		"access {entity_type} overview",
		"view assigned {entity_type}",
		"view assigned {entity_type} revisions",
	},
	OpUpdateAny:      {"update any {entity_type}"},
	OpUpdateAssigned: {"update assigned {entity_type}"},
	OpRevertAny:      {"revert all {entity_type} revisions"},
	OpDeleteAny:      {"delete any {entity_type}"},
}

// RoleOperations maps each experiment role to the operations it may perform.
var RoleOperations = map[string][]Operation{
	"rothamsted_data_steward":    {OpCreate, OpView, OpUpdateAny, OpRevertAny, OpDeleteAny},
	"rothamsted_research_lead":   {OpCreate, OpView, OpUpdateAssigned, OpRevertAny},
	"rothamsted_researcher":      {OpView, OpUpdateAssigned},
	"rothamsted_research_viewer": {OpViewAssigned},
	"rothamsted_farm_manager":    {OpView},
	"rothamsted_farm_operator":   {OpView},
	"rothamsted_farm_viewer":     {OpView},
}

// RoleLabels are the human readable names seeded alongside the roles.
var RoleLabels = map[string]string{
	"rothamsted_data_steward":    "Data steward",
	"rothamsted_research_lead":   "Research lead",
	"rothamsted_researcher":      "Researcher",
	"rothamsted_research_viewer": "Research viewer",
	"rothamsted_farm_manager":    "Farm manager",
	"rothamsted_farm_operator":   "Farm operator",
	"rothamsted_farm_viewer":     "Farm viewer",
}

// PermissionSet is an unordered set of permission strings.
type PermissionSet map[string]struct{}

func (s PermissionSet) Add(permission string) {
	s[permission] = struct{}{}
}

func (s PermissionSet) Has(permission string) bool {
	_, ok := s[permission]
	return ok
}

// Sorted returns the permissions in lexical order.
func (s PermissionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

type PermissionResolver struct {
	templates map[Operation][]string
	roles     map[string][]Operation
}

func NewPermissionResolver(templates map[Operation][]string, roles map[string][]Operation) *PermissionResolver {
	return &PermissionResolver{templates: templates, roles: roles}
}

// DefaultPermissionResolver resolves against PermissionTemplates and RoleOperations.
func DefaultPermissionResolver() *PermissionResolver {
	return NewPermissionResolver(PermissionTemplates, RoleOperations)
}

// Roles returns the known role ids in lexical order.
func (r *PermissionResolver) Roles() []string {
	out := make([]string, 0, len(r.roles))
	for role := range r.roles {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}

func (r *PermissionResolver) HasRole(roleID string) bool {
	_, ok := r.roles[roleID]
	return ok
}

// Resolve returns the permissions roleID holds on entityType. Unknown roles
// resolve to an empty set.
func (r *PermissionResolver) Resolve(roleID, entityType string) (PermissionSet, error) {
	set := PermissionSet{}
	if err := r.resolveInto(set, roleID, entityType); err != nil {
		return nil, err
	}
	return set, nil
}

// ResolveAll unions Resolve over several entity types.
func (r *PermissionResolver) ResolveAll(roleID string, entityTypes []string) (PermissionSet, error) {
	set := PermissionSet{}
	for _, entityType := range entityTypes {
		if err := r.resolveInto(set, roleID, entityType); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func (r *PermissionResolver) resolveInto(set PermissionSet, roleID, entityType string) error {
	for _, op := range r.roles[roleID] {
		templates, ok := r.templates[op]
		if !ok {
			return &UnknownOperationError{Role: roleID, Operation: op}
		}
		for _, tmpl := range templates {
			set.Add(strings.ReplaceAll(tmpl, EntityTypePlaceholder, entityType))
		}
	}
	return nil
}

// Validate checks the tables without resolving anything: every operation a
// role names must have templates, and every template must carry the placeholder.
func (r *PermissionResolver) Validate() error {
	var errs []error
	for _, role := range r.Roles() {
		for _, op := range r.roles[role] {
			if _, ok := r.templates[op]; !ok {
				errs = append(errs, &UnknownOperationError{Role: role, Operation: op})
			}
		}
	}
	for op, templates := range r.templates {
		for _, tmpl := range templates {
			if strings.Count(tmpl, EntityTypePlaceholder) != 1 {
				errs = append(errs, fmt.Errorf("template %q for operation %s must contain %s exactly once", tmpl, op, EntityTypePlaceholder))
			}
		}
	}
	return errors.Join(errs...)
}
