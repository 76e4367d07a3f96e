package views

import (
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"grandaura/internal/domain"
)

// ProfileView alimenta a página de perfil self-service.
type ProfileView struct {
	Auth      domain.AuthContext
	Principal domain.Principal
	Message   string
	Error     string
}

// ProfilePage mostra os dados editáveis e o formulário de troca de senha.
func ProfilePage(v ProfileView) Node {
	action := v.Auth.Role.Namespace() + "/profile"
	return page("My profile", &v.Auth,
		H1(Text("My profile")),
		flash("success", v.Message),
		flash("error", v.Error),
		P(Strong(Text("Email: ")), Text(v.Principal.Email)),
		Form(Method("post"), Action(action), Class("profile-form"),
			field("Name", "display_name", "text", v.Principal.DisplayName, false),
			field("Department", "department", "text", v.Principal.Department, false),
			field("Phone number", "phone_number", "tel", v.Principal.PhoneNumber, false),
			H2(Text("Change password")),
			field("Current password", "current_password", "password", "", false),
			field("New password", "new_password", "password", "", false),
			Button(Type("submit"), Class("btn btn-primary"), Text("Save")),
		),
	)
}
