package domain

import "strings"

// Role é a classe de autorização fixa atribuída a um principal.
// Cada role corresponde a exatamente um repositório de identidades.
type Role string

const (
	RoleCustomer         Role = "CUSTOMER"
	RoleHotelOwner       Role = "HOTEL_OWNER"
	RoleEventCoordinator Role = "EVENT_COORDINATOR"
	RoleSystemAdmin      Role = "SYSTEM_ADMIN"
	RoleCateringManager  Role = "CATERING_MANAGER"
	RoleFrontDesk        Role = "FRONT_DESK"
)

// roleSpec agrupa tudo o que é fixo por role: tabela, namespace e páginas.
type roleSpec struct {
	table     string
	slug      string
	namespace string
	loginPath string
	landing   string
	label     string
}

var roleSpecs = map[Role]roleSpec{
	RoleCustomer: {
		table: "users", slug: "customers", namespace: "/bookings",
		loginPath: "/login", landing: "/bookings/my", label: "Customer",
	},
	RoleHotelOwner: {
		table: "hotel_owners", slug: "hotel-owners", namespace: "/hotel-owner",
		loginPath: "/hotel-owner/login", landing: "/hotel-owner/dashboard", label: "Hotel Owner",
	},
	RoleEventCoordinator: {
		table: "event_coordinators", slug: "event-coordinators", namespace: "/event-coordinator",
		loginPath: "/event-coordinator/login", landing: "/event-coordinator/dashboard", label: "Event Coordinator",
	},
	RoleSystemAdmin: {
		table: "system_administrators", slug: "system-admins", namespace: "/system-admin",
		loginPath: "/system-admin/login", landing: "/system-admin/dashboard", label: "System Administrator",
	},
	RoleCateringManager: {
		table: "catering_managers", slug: "catering-managers", namespace: "/catering-manager",
		loginPath: "/catering-manager/login", landing: "/catering-manager/dashboard", label: "Catering Manager",
	},
	RoleFrontDesk: {
		table: "front_desk_officers", slug: "front-desk-officers", namespace: "/front-desk",
		loginPath: "/front-desk/login", landing: "/front-desk/dashboard", label: "Front Desk Officer",
	},
}

// AllRoles devolve as roles na ordem de prioridade usada no despacho por sondagem.
func AllRoles() []Role {
	return []Role{
		RoleCustomer,
		RoleHotelOwner,
		RoleEventCoordinator,
		RoleSystemAdmin,
		RoleCateringManager,
		RoleFrontDesk,
	}
}

// StaffRoles são as roles com namespace e dashboard próprios.
func StaffRoles() []Role {
	return AllRoles()[1:]
}

// Valid indica se a role é uma das seis conhecidas.
func (r Role) Valid() bool {
	_, ok := roleSpecs[r]
	return ok
}

// Table é a tabela (coleção) que guarda os principais desta role.
func (r Role) Table() string { return roleSpecs[r].table }

// Slug identifica a role em URLs administrativas (e.g. /system-admin/users/hotel-owners/{id}).
func (r Role) Slug() string { return roleSpecs[r].slug }

// Namespace é o prefixo de URL reservado à role.
func (r Role) Namespace() string { return roleSpecs[r].namespace }

// LoginPath é a página de login que corresponde à role.
func (r Role) LoginPath() string {
	if spec, ok := roleSpecs[r]; ok {
		return spec.loginPath
	}
	return "/login"
}

// FailurePath é a rota de falha explícita da role (sem inspeção do Referer).
func (r Role) FailurePath() string {
	return r.LoginPath() + "?error=true"
}

// LandingPath é o destino único após autenticação bem-sucedida.
func (r Role) LandingPath() string {
	if spec, ok := roleSpecs[r]; ok {
		return spec.landing
	}
	return "/bookings/my"
}

// Label é o nome legível da role.
func (r Role) Label() string {
	if spec, ok := roleSpecs[r]; ok {
		return spec.label
	}
	return string(r)
}

// ParseRole converte valores de formulário ("HOTEL_OWNER", "hotel-owner", "hotel_owner") numa Role.
func ParseRole(value string) (Role, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	role := Role(normalized)
	if role.Valid() {
		return role, true
	}
	return "", false
}

// RoleFromSlug resolve o slug administrativo de volta para a Role.
func RoleFromSlug(slug string) (Role, bool) {
	for role, spec := range roleSpecs {
		if spec.slug == slug {
			return role, true
		}
	}
	return "", false
}

// RoleFromNamespace resolve o namespace ("/hotel-owner") para a Role dona dele.
func RoleFromNamespace(namespace string) (Role, bool) {
	for role, spec := range roleSpecs {
		if spec.namespace == namespace {
			return role, true
		}
	}
	return "", false
}
