// Package markup compiles HTML templates written as node trees into
// runnable programs.
//
// A template is lowered once: static markup becomes escaped literal writes,
// splices become expression writes that escape while they stream, and
// conditionals and loops become nested sub-programs. The resulting Template
// is immutable and safe to execute from many goroutines.
//
//	doc, _ := ast.Decode(source, "post.yaml")
//	tpl, err := markup.CompileDocument(doc)
//	if err != nil {
//		return err
//	}
//	err = tpl.Execute(w, map[string]any{"post": post})
package markup
