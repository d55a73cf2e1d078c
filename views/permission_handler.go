package views

import (
	"net/http"

	"github.com/GrainArc/TrialMap/response"
	"github.com/GrainArc/TrialMap/services"
	"github.com/gin-gonic/gin"
)

type PermissionHandler struct {
	resolver    *services.PermissionResolver
	roles       *services.RoleService
	entityTypes []string
}

func NewPermissionHandler(resolver *services.PermissionResolver, roles *services.RoleService, entityTypes []string) *PermissionHandler {
	return &PermissionHandler{
		resolver:    resolver,
		roles:       roles,
		entityTypes: entityTypes,
	}
}

// Resolve answers with the permissions of a role, for one entity type when
// entity_type is given and for every managed type otherwise.
func (h *PermissionHandler) Resolve(c *gin.Context) {
	role := c.Param("role")
	entityType := c.Query("entity_type")

	var (
		set services.PermissionSet
		err error
	)
	if entityType != "" {
		set, err = h.resolver.Resolve(role, entityType)
	} else {
		set, err = h.resolver.ResolveAll(role, h.entityTypes)
	}
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"role":        role,
		"known":       h.resolver.HasRole(role),
		"permissions": set.Sorted(),
	})
}

// Check runs the table consistency check.
func (h *PermissionHandler) Check(c *gin.Context) {
	if err := h.resolver.Validate(); err != nil {
		response.Error(c, http.StatusInternalServerError, "permission tables are inconsistent", gin.H{"error": err.Error()})
		return
	}
	response.Success(c, gin.H{"roles": h.resolver.Roles()})
}

// Sync is called when a role is saved on the host platform.
func (h *PermissionHandler) Sync(c *gin.Context) {
	role := c.Param("role")
	permissions, err := h.roles.SyncRole(c.Request.Context(), role)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.SuccessWithMessage(c, "role permissions synced", gin.H{
		"role":        role,
		"permissions": permissions,
	})
}

func (h *PermissionHandler) Stored(c *gin.Context) {
	role := c.Param("role")
	permissions, err := h.roles.StoredPermissions(c.Request.Context(), role)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, gin.H{
		"role":        role,
		"permissions": permissions,
	})
}
