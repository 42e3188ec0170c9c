package attribute

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- In-memory repositories ----

type memRepo struct {
	mu    sync.Mutex
	attrs map[uuid.UUID]*Attribute
	opts  map[uuid.UUID][]*Option
}

func newMemRepo() *memRepo {
	return &memRepo{attrs: map[uuid.UUID]*Attribute{}, opts: map[uuid.UUID][]*Option{}}
}

func (m *memRepo) CreateAttribute(ctx context.Context, a *Attribute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.attrs[a.ID] = a
	return nil
}

func (m *memRepo) GetAttributeByID(ctx context.Context, tenantID, id uuid.UUID) (*Attribute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attrs[id]
	if !ok || a.TenantID != tenantID {
		return nil, fmt.Errorf("attribute %s: %w", id, ErrNotFound)
	}
	return a, nil
}

func (m *memRepo) ListAttributes(ctx context.Context, tenantID uuid.UUID, configurableOnly bool) ([]*Attribute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var attrs []*Attribute
	for _, a := range m.attrs {
		if a.TenantID != tenantID || (configurableOnly && !a.IsConfigurable) {
			continue
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

func (m *memRepo) UpdateAttribute(ctx context.Context, a *Attribute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.UpdatedAt = time.Now()
	m.attrs[a.ID] = a
	return nil
}

func (m *memRepo) CreateOption(ctx context.Context, o *Option) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.CreatedAt = time.Now()
	m.opts[o.AttributeID] = append(m.opts[o.AttributeID], o)
	return nil
}

func (m *memRepo) ListOptionsByAttribute(ctx context.Context, attributeID uuid.UUID) ([]*Option, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	opts := append([]*Option(nil), m.opts[attributeID]...)
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].SortOrder != opts[j].SortOrder {
			return opts[i].SortOrder < opts[j].SortOrder
		}
		return opts[i].Value < opts[j].Value
	})
	return opts, nil
}

type memAssignments struct {
	mu   sync.Mutex
	rows map[string]*Assignment
}

func newMemAssignments() *memAssignments {
	return &memAssignments{rows: map[string]*Assignment{}}
}

func assignmentKey(owner OwnerRef, attributeID uuid.UUID) string {
	return fmt.Sprintf("%s/%s/%s", owner.Type, owner.ID, attributeID)
}

func (m *memAssignments) UpsertAssignment(ctx context.Context, a *Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := assignmentKey(OwnerRef{Type: a.OwnerType, ID: a.OwnerID}, a.AttributeID)
	if existing, ok := m.rows[key]; ok {
		// Overwrite keeps the original row identity, like the ON CONFLICT
		// upsert does.
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	} else {
		a.CreatedAt = time.Now()
	}
	a.UpdatedAt = time.Now()
	m.rows[key] = a
	return nil
}

func (m *memAssignments) GetAssignment(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, attributeID uuid.UUID) (*Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[assignmentKey(owner, attributeID)]
	if !ok || a.TenantID != tenantID {
		return nil, nil
	}
	return a, nil
}

func (m *memAssignments) ListAssignments(ctx context.Context, tenantID uuid.UUID, owner OwnerRef) ([]*Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Assignment
	for _, a := range m.rows {
		if a.TenantID == tenantID && a.OwnerType == owner.Type && a.OwnerID == owner.ID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memAssignments) DeleteAssignment(ctx context.Context, tenantID uuid.UUID, owner OwnerRef, attributeID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := assignmentKey(owner, attributeID)
	_, ok := m.rows[key]
	delete(m.rows, key)
	return ok, nil
}

// ---- Fixtures ----

var (
	testTenant = uuid.New()
	testOwner  = OwnerRef{Type: OwnerCatalogItem, ID: uuid.New()}
)

func newTestService(t *testing.T, policy RequirePolicy) (Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	return NewService(repo, newMemAssignments(), policy), repo
}

func defineSelect(t *testing.T, svc Service, name string, values ...string) *Attribute {
	t.Helper()
	a, err := svc.DefineAttribute(context.Background(), testTenant, DefineAttributeRequest{
		Name: name, DataType: TypeSelect, IsConfigurable: true,
	})
	require.NoError(t, err)
	for i, v := range values {
		_, err := svc.DefineOption(context.Background(), testTenant, a.ID, DefineOptionRequest{Value: v, SortOrder: i})
		require.NoError(t, err)
	}
	return a
}

// ---- Tests ----

func TestDefineAttribute_SlugAndTypeCheck(t *testing.T) {
	svc, _ := newTestService(t, RequireDeferred)

	a, err := svc.DefineAttribute(context.Background(), testTenant, DefineAttributeRequest{
		Name: "Part Number", DataType: TypeText,
	})
	require.NoError(t, err)
	assert.Equal(t, "part-number", a.Slug)

	_, err = svc.DefineAttribute(context.Background(), testTenant, DefineAttributeRequest{
		Name: "Broken", DataType: "ENUM",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAssignAttribute_SelectStoresOptionReference(t *testing.T) {
	svc, _ := newTestService(t, RequireDeferred)
	color := defineSelect(t, svc, "Color", "Red", "Blue")

	a, err := svc.AssignAttribute(context.Background(), testTenant, testOwner, color.ID, "Red")
	require.NoError(t, err)
	require.NotNil(t, a.OptionID)
	assert.Nil(t, a.CustomValue)

	value, err := svc.GetValue(context.Background(), testTenant, testOwner, color.ID)
	require.NoError(t, err)
	assert.Equal(t, "Red", value)
}

func TestAssignAttribute_MultiSelectStoredAsCustomArray(t *testing.T) {
	svc, _ := newTestService(t, RequireDeferred)
	sizes, err := svc.DefineAttribute(context.Background(), testTenant, DefineAttributeRequest{
		Name: "Sizes", DataType: TypeMultiSelect,
	})
	require.NoError(t, err)
	for i, v := range []string{"S", "M", "L"} {
		_, err := svc.DefineOption(context.Background(), testTenant, sizes.ID, DefineOptionRequest{Value: v, SortOrder: i})
		require.NoError(t, err)
	}

	a, err := svc.AssignAttribute(context.Background(), testTenant, testOwner, sizes.ID, []any{"S", "L"})
	require.NoError(t, err)
	// Arrays are always stored as a custom JSON value, never as a reference.
	assert.Nil(t, a.OptionID)
	require.NotNil(t, a.CustomValue)
	assert.JSONEq(t, `["S","L"]`, *a.CustomValue)

	value, err := svc.GetValue(context.Background(), testTenant, testOwner, sizes.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"S", "L"}, value)

	display, err := svc.DisplayValue(context.Background(), testTenant, a)
	require.NoError(t, err)
	assert.Equal(t, "S, L", display)
}

func TestAssignAttribute_OverwritesExisting(t *testing.T) {
	svc, _ := newTestService(t, RequireDeferred)
	color := defineSelect(t, svc, "Color", "Red", "Blue")

	first, err := svc.AssignAttribute(context.Background(), testTenant, testOwner, color.ID, "Red")
	require.NoError(t, err)
	second, err := svc.AssignAttribute(context.Background(), testTenant, testOwner, color.ID, "Blue")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "overwrite must not create a second row")

	rows, err := svc.AttributesForDisplay(context.Background(), testTenant, testOwner)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Blue", rows[0].Display)
}

func TestAssignAttribute_RejectsInvalidValue(t *testing.T) {
	svc, _ := newTestService(t, RequireDeferred)
	color := defineSelect(t, svc, "Color", "Red", "Blue")

	_, err := svc.AssignAttribute(context.Background(), testTenant, testOwner, color.ID, "Green")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AssignAttribute(context.Background(), testTenant, testOwner, uuid.New(), "Red")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignAttribute_RequiredPolicy(t *testing.T) {
	ctx := context.Background()

	strict, _ := newTestService(t, RequireOnAssign)
	name, err := strict.DefineAttribute(ctx, testTenant, DefineAttributeRequest{
		Name: "Display Name", DataType: TypeText, IsRequired: true,
	})
	require.NoError(t, err)
	_, err = strict.AssignAttribute(ctx, testTenant, testOwner, name.ID, "")
	assert.ErrorIs(t, err, ErrValidation)

	deferred, _ := newTestService(t, RequireDeferred)
	name2, err := deferred.DefineAttribute(ctx, testTenant, DefineAttributeRequest{
		Name: "Display Name", DataType: TypeText, IsRequired: true,
	})
	require.NoError(t, err)
	_, err = deferred.AssignAttribute(ctx, testTenant, testOwner, name2.ID, "")
	assert.NoError(t, err, "deferred policy leaves required-ness to the form layer")
}

func TestAssignAttributes_EntriesIndependent(t *testing.T) {
	svc, _ := newTestService(t, RequireDeferred)
	color := defineSelect(t, svc, "Color", "Red", "Blue")
	weight, err := svc.DefineAttribute(context.Background(), testTenant, DefineAttributeRequest{
		Name: "Weight", DataType: TypeNumber,
	})
	require.NoError(t, err)

	result, err := svc.AssignAttributes(context.Background(), testTenant, testOwner, map[uuid.UUID]any{
		color.ID:  "Purple", // unknown option
		weight.ID: "12.5",
	})
	require.NoError(t, err)
	assert.Len(t, result.Applied, 1)
	assert.Contains(t, result.Failed, color.ID)

	value, err := svc.GetValue(context.Background(), testTenant, testOwner, weight.ID)
	require.NoError(t, err)
	assert.Equal(t, "12.5", value)
}

func TestRemoveAttribute(t *testing.T) {
	svc, _ := newTestService(t, RequireDeferred)
	color := defineSelect(t, svc, "Color", "Red")
	material := defineSelect(t, svc, "Material", "Wool")

	_, err := svc.AssignAttribute(context.Background(), testTenant, testOwner, color.ID, "Red")
	require.NoError(t, err)
	_, err = svc.AssignAttribute(context.Background(), testTenant, testOwner, material.ID, "Wool")
	require.NoError(t, err)

	existed, err := svc.RemoveAttribute(context.Background(), testTenant, testOwner, color.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = svc.RemoveAttribute(context.Background(), testTenant, testOwner, color.ID)
	require.NoError(t, err)
	assert.False(t, existed)

	// The other assignment is untouched.
	value, err := svc.GetValue(context.Background(), testTenant, testOwner, material.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wool", value)

	value, err = svc.GetValue(context.Background(), testTenant, testOwner, color.ID)
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestDataTypeChangeRescopesFutureValidation(t *testing.T) {
	svc, _ := newTestService(t, RequireDeferred)
	attr, err := svc.DefineAttribute(context.Background(), testTenant, DefineAttributeRequest{
		Name: "Grade", DataType: TypeText,
	})
	require.NoError(t, err)

	stored, err := svc.AssignAttribute(context.Background(), testTenant, testOwner, attr.ID, "A+")
	require.NoError(t, err)

	numberType := TypeNumber
	_, err = svc.UpdateAttribute(context.Background(), testTenant, attr.ID, UpdateAttributeRequest{
		DataType: &numberType,
	})
	require.NoError(t, err)

	// New assignments validate against the new type...
	_, err = svc.AssignAttribute(context.Background(), testTenant, OwnerRef{Type: OwnerVariation, ID: uuid.New()}, attr.ID, "A+")
	assert.ErrorIs(t, err, ErrValidation)

	// ...but the stored assignment is not migrated.
	value, err := svc.GetValue(context.Background(), testTenant, testOwner, attr.ID)
	require.NoError(t, err)
	assert.Equal(t, "A+", value)
	_ = stored
}

func TestUpdateAttribute_PartialUpdateKeepsOmittedFlags(t *testing.T) {
	svc, _ := newTestService(t, RequireDeferred)
	attr, err := svc.DefineAttribute(context.Background(), testTenant, DefineAttributeRequest{
		Name: "Color", DataType: TypeSelect, IsConfigurable: true, IsRequired: true,
	})
	require.NoError(t, err)

	// A rename that says nothing about the flags must leave them alone.
	newName := "Colour"
	updated, err := svc.UpdateAttribute(context.Background(), testTenant, attr.ID, UpdateAttributeRequest{
		Name: &newName,
	})
	require.NoError(t, err)
	assert.Equal(t, "Colour", updated.Name)
	assert.True(t, updated.IsConfigurable)
	assert.True(t, updated.IsRequired)

	off := false
	updated, err = svc.UpdateAttribute(context.Background(), testTenant, attr.ID, UpdateAttributeRequest{
		IsRequired: &off,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsRequired)
	assert.True(t, updated.IsConfigurable)
	assert.Equal(t, "Colour", updated.Name)
}

func TestListOptions_ScopedToTenant(t *testing.T) {
	svc, _ := newTestService(t, RequireDeferred)
	color := defineSelect(t, svc, "Color", "Red", "Blue")

	opts, err := svc.ListOptions(context.Background(), testTenant, color.ID)
	require.NoError(t, err)
	assert.Len(t, opts, 2)

	// Another tenant cannot read the option set by attribute id.
	otherTenant := uuid.New()
	opts, err = svc.ListOptions(context.Background(), otherTenant, color.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, opts)
}

func TestValidateValue_ServiceResolvesOptions(t *testing.T) {
	svc, _ := newTestService(t, RequireDeferred)
	color := defineSelect(t, svc, "Color", "Red", "Blue")

	ok, err := svc.ValidateValue(context.Background(), testTenant, color.ID, "Blue")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.ValidateValue(context.Background(), testTenant, color.ID, "blue")
	require.NoError(t, err)
	assert.False(t, ok)
}
