package scaffold

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-markup/internal/lower"
	"github.com/goliatone/go-markup/pkg/expr"
	"github.com/goliatone/go-markup/pkg/render"
	"github.com/goliatone/go-markup/pkg/testsupport"
)

const usersAPI = `
openapi: 3.0.3
info:
  title: Users
  version: 1.0.0
paths:
  /users:
    post:
      operationId: createUser
      summary: Create user
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [name, email]
              properties:
                name:
                  type: string
                  title: Full name
                  description: As printed on the badge.
                  maxLength: 80
                email:
                  type: string
                  format: email
                age:
                  type: integer
                  minimum: 18
                role:
                  type: string
                  enum: [admin, editor]
                newsletter:
                  type: boolean
                bio:
                  type: string
                  maxLength: 2000
                id:
                  type: string
                  readOnly: true
      responses:
        "201":
          description: created
  /users/{id}:
    parameters:
      - name: id
        in: path
        required: true
        schema:
          type: string
    patch:
      requestBody:
        content:
          application/x-www-form-urlencoded:
            schema:
              type: object
              properties:
                nickname:
                  type: string
      responses:
        "200":
          description: updated
    get:
      responses:
        "200":
          description: fetched
`

func renderForm(t *testing.T, operationID string, data map[string]any, options ...Option) string {
	t.Helper()

	nodes, err := Form(context.Background(), []byte(usersAPI), operationID, options...)
	if err != nil {
		t.Fatalf("Form returned error: %v", err)
	}
	r := render.New()
	if err := lower.Lower(r, nodes, expr.New()); err != nil {
		t.Fatalf("Lower returned error: %v", err)
	}
	out, err := r.IntoProgram().RenderString(data)
	if err != nil {
		t.Fatalf("RenderString returned error: %v", err)
	}
	return out
}

func TestFormBuildsControls(t *testing.T) {
	t.Parallel()

	out := renderForm(t, "createUser", map[string]any{
		"values": map[string]any{
			"name":       `Ada "The Countess"`,
			"role":       "editor",
			"newsletter": true,
			"bio":        "<b>hi</b>",
		},
	})
	doc := testsupport.ParseHTML(t, out)

	forms := testsupport.FindElements(doc, "form")
	if len(forms) != 1 {
		t.Fatalf("expected one form, got %d", len(forms))
	}
	if action, _ := testsupport.Attr(forms[0], "action"); action != "/users" {
		t.Fatalf("action mismatch: %q", action)
	}

	inputs := map[string]map[string]string{}
	for _, input := range testsupport.FindElements(doc, "input") {
		attrs := map[string]string{}
		for _, a := range input.Attr {
			attrs[a.Key] = a.Val
		}
		inputs[attrs["name"]] = attrs
	}

	want := map[string]map[string]string{
		"age":        {"id": "age", "name": "age", "type": "number", "min": "18", "value": ""},
		"email":      {"id": "email", "name": "email", "required": "", "type": "email", "value": ""},
		"name":       {"id": "name", "name": "name", "required": "", "type": "text", "maxlength": "80", "value": `Ada "The Countess"`},
		"newsletter": {"id": "newsletter", "name": "newsletter", "type": "checkbox", "value": "true", "checked": ""},
	}
	if diff := cmp.Diff(want, inputs); diff != "" {
		t.Fatalf("inputs mismatch (-want +got):\n%s", diff)
	}

	var selected []string
	for _, option := range testsupport.FindElements(doc, "option") {
		if _, ok := testsupport.Attr(option, "selected"); ok {
			value, _ := testsupport.Attr(option, "value")
			selected = append(selected, value)
		}
	}
	if diff := cmp.Diff([]string{"editor"}, selected); diff != "" {
		t.Fatalf("selected options mismatch (-want +got):\n%s", diff)
	}

	areas := testsupport.FindElements(doc, "textarea")
	if len(areas) != 1 || areas[0].FirstChild == nil || areas[0].FirstChild.Data != "<b>hi</b>" {
		t.Fatalf("textarea content mismatch: %q", out)
	}

	labels := testsupport.FindElements(doc, "label")
	if len(labels) != 6 || labels[3].FirstChild.Data != "Full name" {
		t.Fatalf("labels mismatch: %q", out)
	}
}

func TestFormWithoutValues(t *testing.T) {
	t.Parallel()

	out := renderForm(t, "patch:/users/{id}", nil, WithValuesRoot(""), WithSubmitLabel("Save"))
	want := `<form method="post" action="/users/{id}">` +
		`<div class="field"><label for="nickname">nickname</label>` +
		`<input id="nickname" name="nickname" type="text"></div>` +
		`<button type="submit">Save</button></form>`
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestFormErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, err := Form(ctx, []byte(usersAPI), "deleteUser"); !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
	if _, err := Form(ctx, []byte(usersAPI), "get:/users/{id}"); err == nil {
		t.Fatalf("expected error for operation without request body")
	}
	if _, err := Form(ctx, nil, "createUser"); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if _, err := Form(ctx, []byte("openapi: [broken"), "createUser"); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestFormValidation(t *testing.T) {
	t.Parallel()

	nodes, err := Form(context.Background(), []byte(usersAPI), "createUser", WithValidation(true))
	if err != nil {
		t.Fatalf("Form returned error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected a single form node, got %d", len(nodes))
	}
}
