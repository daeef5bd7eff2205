// Package formkit is a reactive form-state controller built on typed field
// paths.
//
// A Store owns the current data tree, the initial (baseline) tree and the
// validation issues of a form. Fields are registered per path and expose
// touched/dirty flags, their issues and copy-on-write writes:
//
//	s := formkit.New(formkit.Config{Validator: v})
//	city := s.MustRegisterField(fieldpath.MustParse("address.city"),
//		formkit.RegisterOpt{DefaultValue: ""})
//	_ = city.SetValue("Arkham")
//	_ = s.ValidateForm(ctx)
//
// Related packages:
//   - fieldpath: path segments, the string grammar, get/set/modify/delete
//   - reconcile: deep equality with per-type comparators and list diffing
//   - produce: copy-on-write drafts with structural sharing
//   - rules: declarative validators producing Issues
//
// Every mutation yields a new data root; values handed out by the store
// are snapshots and must not be modified. Events are delivered
// synchronously, in order, after the store's lock is released, and never
// for a change that did not happen.
package formkit
