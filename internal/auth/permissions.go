package auth

import "strings"

type StaffPermission string

const (
	PermOrders   StaffPermission = "orders"
	PermMenu     StaffPermission = "menu"
	PermTables   StaffPermission = "tables"
	PermPayments StaffPermission = "payments"
)

// Managers bypass the map; staff tokens carry an explicit permission list
// and each console route resolves to at most one required permission. Keys
// may be method-qualified ("POST /api/admin/payments") for routes where
// reads and writes need different grants. Split management lives under the
// orders prefix and shares its grant.
var apiPermissionMap = map[string]StaffPermission{
	"/api/admin/orders":        PermOrders,
	"/api/admin/menu-items":    PermMenu,
	"/api/admin/tables":        PermTables,
	"/api/admin/payments":      PermPayments,
	"POST /api/admin/payments": PermPayments,
}

func GetPermissionForAPI(path string, method string) *StaffPermission {
	method = strings.ToUpper(strings.TrimSpace(method))

	var bestPath string
	var bestPerm *StaffPermission
	var bestMethodSpecific bool

	for key, perm := range apiPermissionMap {
		keyPath := key
		methodSpecific := false
		if strings.Contains(key, " ") {
			parts := strings.SplitN(key, " ", 2)
			keyMethod := strings.ToUpper(strings.TrimSpace(parts[0]))
			keyPath = strings.TrimSpace(parts[1])
			methodSpecific = true
			if method == "" || method != keyMethod {
				continue
			}
		}

		if !strings.HasPrefix(path, keyPath) {
			continue
		}

		if bestPerm == nil || len(keyPath) > len(bestPath) || (len(keyPath) == len(bestPath) && methodSpecific && !bestMethodSpecific) {
			bestPath = keyPath
			bestMethodSpecific = methodSpecific
			permCopy := perm
			bestPerm = &permCopy
		}
	}

	return bestPerm
}
