package views

import (
	"net/http"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"grandaura/internal/domain"
)

// Render escreve a página HTML com o status indicado.
func Render(w http.ResponseWriter, status int, node Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

// page é o esqueleto comum: cabeçalho com navegação e o conteúdo principal.
func page(title string, auth *domain.AuthContext, content ...Node) Node {
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				TitleEl(Text(title+" | Grand Aura")),
				Link(Rel("stylesheet"), Href("/css/app.css")),
			),
			Body(
				Header(Class("site-header"), navigation(auth)),
				Main(append([]Node{Class("container")}, content...)...),
				Footer(Class("site-footer"),
					A(Href("/privacy"), Text("Privacy")),
					A(Href("/terms"), Text("Terms")),
					A(Href("/cookies"), Text("Cookies")),
					A(Href("/refund"), Text("Refunds")),
				),
			),
		),
	)
}

func navigation(auth *domain.AuthContext) Node {
	links := []Node{
		A(Class("brand"), Href("/"), Text("Grand Aura")),
		A(Href("/gallery"), Text("Gallery")),
		A(Href("/contact"), Text("Contact")),
	}
	if auth == nil {
		links = append(links,
			A(Href("/login"), Text("Sign in")),
			A(Href("/register"), Text("Register")),
		)
		return Nav(Group(links))
	}

	links = append(links,
		A(Href(auth.Role.LandingPath()), Text("My area")),
		Span(Class("who"), Text(auth.Email+" ("+auth.Role.Label()+")")),
		Form(Method("post"), Action("/logout"), Class("inline"),
			Button(Type("submit"), Class("btn btn-link"), Text("Sign out")),
		),
	)
	return Nav(Group(links))
}

func flash(class, msg string) Node {
	if msg == "" {
		return nil
	}
	return P(Class("flash "+class), Text(msg))
}

func field(label, name, kind, value string, required bool) Node {
	return Div(Class("field"),
		Label(For(name), Text(label)),
		Input(
			ID(name),
			Name(name),
			Type(kind),
			If(value != "", Value(value)),
			If(required, Required()),
		),
	)
}
