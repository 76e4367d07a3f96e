package views

import (
	"fmt"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"grandaura/internal/domain"
)

// AdminUsersView alimenta a listagem administrativa de todas as coleções.
type AdminUsersView struct {
	Auth       domain.AuthContext
	Principals []domain.Principal
	Message    string
	Error      string
}

// AdminUsersPage lista os principais com as ações de atualização, toggle e remoção.
func AdminUsersPage(v AdminUsersView) Node {
	rows := Map(v.Principals, func(p domain.Principal) Node {
		base := fmt.Sprintf("/system-admin/users/%s/%s", p.Role.Slug(), p.ID)
		status := "Disabled"
		toggleLabel := "Enable"
		if p.Enabled {
			status = "Enabled"
			toggleLabel = "Disable"
		}
		return Tr(
			Td(Text(p.Role.Label())),
			Td(Text(p.Email)),
			Td(
				Form(Method("post"), Action(base+"/update"), Class("inline"),
					Input(Type("text"), Name("display_name"), Value(p.DisplayName)),
					Input(Type("email"), Name("email"), Value(p.Email), Required()),
					Label(Input(Type("checkbox"), Name("enabled"), Value("true"), If(p.Enabled, Checked())), Text(" enabled")),
					Button(Type("submit"), Class("btn btn-sm"), Text("Update")),
				),
			),
			Td(Text(status)),
			Td(
				Form(Method("post"), Action(base+"/toggle"), Class("inline"),
					Button(Type("submit"), Class("btn btn-sm"), Text(toggleLabel)),
				),
				Form(Method("post"), Action(base+"/delete"), Class("inline"),
					Button(Type("submit"), Class("btn btn-sm btn-danger"), Text("Delete")),
				),
			),
		)
	})

	return page("Users", &v.Auth,
		H1(Text("Users")),
		flash("success", v.Message),
		flash("error", v.Error),
		A(Class("btn btn-primary"), Href("/system-admin/users/add"), Text("Add user")),
		Table(Class("users"),
			THead(Tr(Th(Text("Type")), Th(Text("Email")), Th(Text("Edit")), Th(Text("Status")), Th(Text("Actions")))),
			TBody(rows),
		),
	)
}

// AdminAddUserView alimenta o formulário de criação.
type AdminAddUserView struct {
	Auth  domain.AuthContext
	Form  domain.NewPrincipalRequest
	Error string
}

// AdminAddUserPage renderiza o formulário de criação de principal de qualquer role.
func AdminAddUserPage(v AdminAddUserView) Node {
	options := Map(domain.AllRoles(), func(role domain.Role) Node {
		return Option(Value(role.Slug()), If(role == v.Form.Role, Selected()), Text(role.Label()))
	})

	return page("Add user", &v.Auth,
		H1(Text("Add user")),
		flash("error", v.Error),
		Form(Method("post"), Action("/system-admin/users/create"), Class("user-form"),
			Div(Class("field"), Label(For("user_type"), Text("User type")), Select(ID("user_type"), Name("user_type"), options)),
			field("Email", "email", "email", v.Form.Email, true),
			field("Password", "password", "password", "", true),
			field("Name", "display_name", "text", v.Form.DisplayName, false),
			field("Department", "department", "text", v.Form.Department, false),
			field("Phone number", "phone_number", "tel", v.Form.PhoneNumber, false),
			Div(Class("field"), Label(Input(Type("checkbox"), Name("enabled"), Value("true"), Checked()), Text(" Enabled"))),
			Button(Type("submit"), Class("btn btn-primary"), Text("Create")),
		),
	)
}
