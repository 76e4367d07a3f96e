package views

import (
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"grandaura/internal/domain"
)

// PublicPage é uma página informativa sem conteúdo dinâmico.
func PublicPage(title, body string, auth *domain.AuthContext) Node {
	return page(title, auth,
		H1(Text(title)),
		P(Text(body)),
	)
}

// DashboardPage é o ponto de entrada de cada role de staff.
func DashboardPage(auth domain.AuthContext, principal domain.Principal) Node {
	name := principal.DisplayName
	if name == "" {
		name = principal.Email
	}

	links := []Node{Li(A(Href("/bookings/my"), Text("Bookings")))}
	if auth.Role != domain.RoleCustomer {
		links = append(links, Li(A(Href(auth.Role.Namespace()+"/profile"), Text("My profile"))))
	}
	if auth.Role == domain.RoleSystemAdmin {
		links = append(links, Li(A(Href("/system-admin/users"), Text("Manage users"))))
	}

	return page(auth.Role.Label()+" dashboard", &auth,
		H1(Text(auth.Role.Label()+" dashboard")),
		P(Text("Welcome, "+name+".")),
		If(principal.Department != "", P(Class("muted"), Text(principal.Department))),
		Ul(Class("dashboard-links"), Group(links)),
	)
}

// BookingsPage é a vista de reservas partilhada por todas as roles.
func BookingsPage(auth domain.AuthContext) Node {
	return page("My bookings", &auth,
		H1(Text("My bookings")),
		P(Text("Signed in as "+auth.Email+".")),
		P(Class("muted"), Text("You have no bookings yet.")),
	)
}

// ErrorPage mostra uma falha sem detalhes internos.
func ErrorPage(title, message string, auth *domain.AuthContext) Node {
	return page(title, auth,
		H1(Text(title)),
		P(Text(message)),
		A(Class("btn"), Href("/"), Text("Home")),
	)
}
