package security

import "slices"

const RoleAdmin = "admin"

// HasAnyRole : есть ли у claims хотя бы одна из required
func HasAnyRole(claims *Claims, required []string) bool {
	if claims == nil {
		return false
	}
	for _, role := range required {
		if slices.Contains(claims.Roles, role) {
			return true
		}
	}
	return false
}

// HasAnyPermission : есть ли у claims хотя бы одно из required
func HasAnyPermission(claims *Claims, required []string) bool {
	if claims == nil {
		return false
	}
	for _, permission := range required {
		if slices.Contains(claims.Permissions, permission) {
			return true
		}
	}
	return false
}

// OwnsOrAdmin : владелец ресурса или администратор
func OwnsOrAdmin(ownerID string, claims *Claims) bool {
	if claims == nil {
		return false
	}
	return claims.Subject == ownerID || slices.Contains(claims.Roles, RoleAdmin)
}

func RequireAnyRole(claims *Claims, required ...string) error {
	if !HasAnyRole(claims, required) {
		return ErrInsufficientRole
	}
	return nil
}

func RequireAnyPermission(claims *Claims, required ...string) error {
	if !HasAnyPermission(claims, required) {
		return ErrInsufficientPermission
	}
	return nil
}

func RequireOwnership(ownerID string, claims *Claims) error {
	if !OwnsOrAdmin(ownerID, claims) {
		return ErrOwnership
	}
	return nil
}
