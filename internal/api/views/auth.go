package views

import (
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"grandaura/internal/domain"
)

// LoginView alimenta as páginas de login (genérica e por role).
type LoginView struct {
	Role       domain.Role // vazio = formulário genérico
	Failed     bool
	LoggedOut  bool
	Registered bool
}

// LoginPage renderiza o formulário; a role viaja num campo oculto para o POST /login partilhado.
func LoginPage(v LoginView) Node {
	title := "Sign in"
	if v.Role != "" && v.Role != domain.RoleCustomer {
		title = v.Role.Label() + " sign in"
	}

	var notice Node
	switch {
	case v.Failed:
		notice = flash("error", "Invalid credentials.")
	case v.LoggedOut:
		notice = flash("info", "You have been signed out.")
	case v.Registered:
		notice = flash("success", "Registration successful. Please sign in.")
	}

	return page(title, nil,
		H1(Text(title)),
		notice,
		Form(Method("post"), Action("/login"), Class("login-form"),
			If(v.Role != "", Input(Type("hidden"), Name("role"), Value(string(v.Role)))),
			field("Email", "email", "email", "", true),
			field("Password", "password", "password", "", true),
			Button(Type("submit"), Class("btn btn-primary"), Text("Sign in")),
		),
		If(v.Role == "" || v.Role == domain.RoleCustomer,
			P(Text("New here? "), A(Href("/register"), Text("Create an account"))),
		),
		staffLoginLinks(v.Role),
	)
}

func staffLoginLinks(current domain.Role) Node {
	items := []Node{}
	for _, role := range domain.StaffRoles() {
		if role == current {
			continue
		}
		items = append(items, Li(A(Href(role.LoginPath()), Text(role.Label()+" login"))))
	}
	return Section(Class("staff-logins"), H2(Text("Staff")), Ul(Group(items)))
}

// RegisterView alimenta a página de registro de clientes.
type RegisterView struct {
	Email string
	Error string
}

// RegisterPage renderiza o formulário de registro, com a mensagem de erro inline.
func RegisterPage(v RegisterView) Node {
	return page("Register", nil,
		H1(Text("Create an account")),
		flash("error", v.Error),
		Form(Method("post"), Action("/register"), Class("register-form"),
			field("Email", "email", "email", v.Email, true),
			field("Password (min. 8 characters)", "password", "password", "", true),
			Button(Type("submit"), Class("btn btn-primary"), Text("Register")),
		),
		P(Text("Already registered? "), A(Href("/login"), Text("Sign in"))),
	)
}

// AccessDeniedPage é mostrada quando a role da sessão não pode ver o namespace pedido.
func AccessDeniedPage(auth *domain.AuthContext) Node {
	back := "/"
	if auth != nil {
		back = auth.Role.LandingPath()
	}
	return page("Access denied", auth,
		H1(Text("Access denied")),
		P(Text("Your account does not have permission to view this page.")),
		A(Class("btn"), Href(back), Text("Back to my area")),
	)
}
