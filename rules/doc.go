// Package rules builds formkit validators from declarative path rules.
//
//	v := rules.New([]rules.Rule{
//		rules.Required("name"),
//		rules.MinLength("name", 2),
//		rules.Each("friends", rules.Required("name")),
//		rules.If("kind", rules.Eq, "company").Then(rules.Required("vat")),
//	})
//	store := formkit.New(formkit.Config{Validator: v})
//
// Paths use the fieldpath string syntax. Messages come from the i18n
// package, so switching its language changes the issue messages.
package rules
