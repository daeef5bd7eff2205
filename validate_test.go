package formkit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reoring/formkit"
	fp "github.com/reoring/formkit/fieldpath"
)

// fakeValidator returns whatever issues are currently configured.
type fakeValidator struct{ issues formkit.Issues }

func (v *fakeValidator) Validate(_ context.Context, data any) (formkit.Result, error) {
	if len(v.issues) > 0 {
		return formkit.Result{Issues: v.issues}, nil
	}
	return formkit.Result{Value: data}, nil
}

func required(path string) formkit.Issue {
	return formkit.IssueAt(fp.MustParse(path), formkit.CodeRequired, path+" is required", nil)
}

func TestValidateField_RepeatedResultEmitsNothing(t *testing.T) {
	v := &fakeValidator{issues: formkit.Issues{required("name")}}
	s := formkit.New(formkit.Config{Validator: v})
	f := s.MustRegisterField(fp.MustParse("name"))

	var rec recorder
	rec.attach(s, formkit.EventFieldIssuesUpdated, formkit.EventValidationTriggered)
	ctx := context.Background()

	require.NoError(t, f.TriggerValidation(ctx))
	require.Equal(t, []string{"validationTriggered name", "fieldIssuesUpdated name"}, rec.got)
	require.Len(t, f.Issues(), 1)

	rec.got = nil
	require.NoError(t, f.TriggerValidation(ctx))
	require.Equal(t, 0, rec.count("fieldIssuesUpdated name"))
	require.Len(t, s.Issues(), 1)

	v.issues = nil
	require.NoError(t, f.TriggerValidation(ctx))
	require.Equal(t, 1, rec.count("fieldIssuesUpdated name"))
	require.True(t, f.IsValid())
	require.True(t, s.IsValid())
}

func TestValidateField_LeavesOtherScopesAlone(t *testing.T) {
	v := &fakeValidator{issues: formkit.Issues{required("a"), required("b")}}
	s := formkit.New(formkit.Config{Validator: v})
	ctx := context.Background()

	require.NoError(t, s.ValidateField(ctx, fp.MustParse("a")))
	require.Equal(t, formkit.Issues{required("a")}, s.Issues())

	_, ok := s.Field(fp.MustParse("a"))
	require.True(t, ok, "validating a path registers it")

	v.issues = formkit.Issues{required("b")}
	require.NoError(t, s.ValidateField(ctx, fp.MustParse("b")))
	require.Equal(t, formkit.Issues{required("a"), required("b")}, s.Issues(),
		"issues outside the validated scope survive")
}

func TestValidateField_ScopeIncludesDescendants(t *testing.T) {
	v := &fakeValidator{issues: formkit.Issues{required("address.city"), required("address.zip")}}
	s := formkit.New(formkit.Config{Validator: v})
	addr := s.MustRegisterField(fp.MustParse("address"))
	city := s.MustRegisterField(fp.MustParse("address.city"))

	require.NoError(t, addr.TriggerValidation(context.Background()))
	require.Len(t, s.Issues(), 2)
	require.Empty(t, addr.Issues(), "issues are exposed exactly at their path")
	require.Len(t, city.Issues(), 1)
}

func TestValidateForm_DuplicatesAreSuppressed(t *testing.T) {
	v := &fakeValidator{issues: formkit.Issues{required("name"), required("name")}}
	s := formkit.New(formkit.Config{Validator: v})
	s.MustRegisterField(fp.MustParse("name"))

	require.NoError(t, s.ValidateForm(context.Background()))
	require.Equal(t, formkit.Issues{required("name")}, s.Issues())
}

func TestValidateForm_UnregisteredAndFormLevelIssues(t *testing.T) {
	formLevel := formkit.FormIssue(formkit.CodeBusinessRule, "dates overlap")
	v := &fakeValidator{issues: formkit.Issues{required("name"), required("elsewhere"), formLevel}}
	s := formkit.New(formkit.Config{Validator: v})
	s.MustRegisterField(fp.MustParse("name"))

	var rec recorder
	rec.attach(s, formkit.EventFieldIssuesUpdated, formkit.EventValidationTriggered)
	ctx := context.Background()

	require.NoError(t, s.ValidateForm(ctx))
	require.ElementsMatch(t, formkit.Issues{required("name"), required("elsewhere"), formLevel}, s.Issues())
	require.Equal(t, []string{"validationTriggered name", "fieldIssuesUpdated name"}, rec.got)

	rec.got = nil
	require.NoError(t, s.ValidateForm(ctx))
	require.Equal(t, []string{"validationTriggered name"}, rec.got)
	require.Len(t, s.Issues(), 3)

	v.issues = nil
	require.NoError(t, s.ValidateForm(ctx))
	require.Empty(t, s.Issues())
}

func TestValidate_NoValidatorIsNoop(t *testing.T) {
	s := formkit.New(formkit.Config{})
	var statuses []bool
	s.OnValidationStatusChange(func(v bool) { statuses = append(statuses, v) })

	require.NoError(t, s.ValidateForm(context.Background()))
	require.NoError(t, s.ValidateField(context.Background(), fp.MustParse("a")))
	require.Empty(t, statuses)
	_, ok := s.Field(fp.MustParse("a"))
	require.False(t, ok)
}

func TestClearFieldIssuesAndReset(t *testing.T) {
	v := &fakeValidator{issues: formkit.Issues{required("name"), required("email")}}
	s := formkit.New(formkit.Config{Validator: v})
	name := s.MustRegisterField(fp.MustParse("name"))
	email := s.MustRegisterField(fp.MustParse("email"))
	require.NoError(t, s.ValidateForm(context.Background()))

	var rec recorder
	rec.attach(s, formkit.EventFieldIssuesUpdated)

	name.ClearIssues()
	name.ClearIssues()
	require.True(t, name.IsValid())
	require.False(t, email.IsValid())
	require.Equal(t, []string{"fieldIssuesUpdated name"}, rec.got)

	s.Reset()
	require.True(t, s.IsValid())
	require.Equal(t, []string{"fieldIssuesUpdated name", "fieldIssuesUpdated email"}, rec.got)
}

func TestCustomValidator_Issues(t *testing.T) {
	v := formkit.CustomValidator(func(_ context.Context, data any) ([]formkit.CustomIssue, error) {
		if fp.Get(data, fp.MustParse("friends[0].name")) == "" {
			return []formkit.CustomIssue{{Path: "friends[0].name", Message: "name your friend"}}, nil
		}
		return nil, nil
	})
	s := formkit.New(formkit.Config{
		InitialData: map[string]any{"friends": []any{map[string]any{"name": ""}}},
		Validator:   v,
	})
	f := s.MustRegisterField(fp.MustParse("friends[0].name"))
	ctx := context.Background()

	require.NoError(t, s.ValidateForm(ctx))
	require.Len(t, f.Issues(), 1)
	require.Equal(t, formkit.CodeBusinessRule, f.Issues()[0].Code)
	require.Equal(t, "name your friend", f.Issues()[0].Message)

	require.NoError(t, f.SetValue("Randolph"))
	require.NoError(t, s.ValidateForm(ctx))
	require.True(t, s.IsValid())

	res, err := v.Validate(ctx, s.Data())
	require.NoError(t, err)
	require.True(t, res.Valid())
	require.Equal(t, s.Data(), res.Value)
}

func TestCustomValidator_StrategyErrorBecomesFormIssue(t *testing.T) {
	v := formkit.CustomValidator(func(context.Context, any) ([]formkit.CustomIssue, error) {
		return nil, errors.New("lookup service down")
	})
	s := formkit.New(formkit.Config{Validator: v})

	require.NoError(t, s.ValidateForm(context.Background()))
	iss := s.Issues()
	require.Len(t, iss, 1)
	require.True(t, iss[0].IsFormLevel())
	require.Equal(t, formkit.CodeUnknown, iss[0].Code)
	require.Equal(t, "lookup service down", iss[0].Message)
}

func TestCustomValidator_Errors(t *testing.T) {
	bad := formkit.CustomValidator(func(context.Context, any) ([]formkit.CustomIssue, error) {
		return []formkit.CustomIssue{{Path: "a[x]", Message: "m"}}, nil
	})
	_, err := bad.Validate(context.Background(), nil)
	require.True(t, errors.Is(err, fp.ErrMalformedPath), "got %v", err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	aborted := formkit.CustomValidator(func(ctx context.Context, _ any) ([]formkit.CustomIssue, error) {
		return nil, ctx.Err()
	})
	_, err = aborted.Validate(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}
