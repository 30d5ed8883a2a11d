package partner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/uniformco/backoffice/internal/domain/identity"
	"github.com/uniformco/backoffice/internal/domain/partner"
	"github.com/uniformco/backoffice/internal/domain/shared"
	"github.com/uniformco/backoffice/internal/domain/trade"
	"github.com/uniformco/backoffice/internal/infrastructure/persistence"
	"github.com/uniformco/backoffice/internal/testutil"
)

type customerFixture struct {
	db      *gorm.DB
	events  *testutil.RecordingPublisher
	service *CustomerService
}

func newCustomerFixture(t *testing.T) *customerFixture {
	db := testutil.NewTestDB(t)
	events := testutil.NewRecordingPublisher()
	return &customerFixture{
		db:     db,
		events: events,
		service: NewCustomerService(
			persistence.NewGormCustomerRepository(db),
			persistence.NewGormOrderRepository(db),
			events,
			zap.NewNop(),
		),
	}
}

func createRequest(email string) CreateCustomerRequest {
	return CreateCustomerRequest{
		Name:         "Riverside College",
		Email:        email,
		Phone:        "+1 555 0123",
		BusinessType: "college",
		Address:      AddressInput{City: "Riverside", Country: "US"},
		Tags:         []string{"Vip"},
	}
}

func requireCode(t *testing.T, err error, kind shared.ErrorKind, code string) {
	t.Helper()
	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, kind, de.Kind)
	assert.Equal(t, code, de.Code)
}

func TestCustomerService_Create(t *testing.T) {
	f := newCustomerFixture(t)
	staff := testutil.StaffPrincipal(uuid.New())

	resp, err := f.service.Create(context.Background(), staff, createRequest("Office@Riverside.edu"))

	require.NoError(t, err)
	assert.Equal(t, "office@riverside.edu", resp.Email)
	assert.Equal(t, "prospect", resp.Status)
	assert.Equal(t, []string{"vip"}, resp.Tags)
	require.NotNil(t, resp.AssignedTo)
	assert.Equal(t, staff.UserID, *resp.AssignedTo)
	assert.Equal(t, "Riverside, US", resp.FullAddress)
	assert.Contains(t, f.events.Types(), partner.EventTypeCustomerCreated)
}

func TestCustomerService_Create_DuplicateEmail(t *testing.T) {
	f := newCustomerFixture(t)
	admin := testutil.AdminPrincipal()
	_, err := f.service.Create(context.Background(), admin, createRequest("office@riverside.edu"))
	require.NoError(t, err)

	_, err = f.service.Create(context.Background(), admin, createRequest("OFFICE@riverside.edu"))

	requireCode(t, err, shared.KindConflict, "CUSTOMER_ALREADY_EXISTS")
}

func TestCustomerService_Create_Validation(t *testing.T) {
	f := newCustomerFixture(t)
	req := createRequest("office@riverside.edu")
	req.Phone = "call me"

	_, err := f.service.Create(context.Background(), testutil.AdminPrincipal(), req)

	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, shared.KindValidation, de.Kind)
	assert.Equal(t, "phone", de.Field)
}

func TestCustomerService_Create_RequiresPermission(t *testing.T) {
	f := newCustomerFixture(t)
	staff := testutil.StaffPrincipal(uuid.New())
	staff.Permissions = staff.Permissions.With(identity.ResourceCustomers, false)

	_, err := f.service.Create(context.Background(), staff, createRequest("office@riverside.edu"))

	assert.ErrorIs(t, err, identity.ErrPermissionDenied)
}

func TestCustomerService_StaffVisibility(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()
	alice := testutil.StaffPrincipal(uuid.New())
	bob := testutil.StaffPrincipal(uuid.New())

	mine, err := f.service.Create(ctx, alice, createRequest("alice@client.test"))
	require.NoError(t, err)
	theirs, err := f.service.Create(ctx, bob, createRequest("bob@client.test"))
	require.NoError(t, err)
	unclaimed := testutil.CreateCustomer(t, f.db, "nobody@client.test", nil)

	page, err := f.service.List(ctx, alice, CustomerListFilter{})
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(page.Items))
	for _, c := range page.Items {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{mine.ID, unclaimed.ID}, ids)
	assert.Equal(t, int64(2), page.Total)

	_, err = f.service.GetByID(ctx, alice, theirs.ID)
	requireCode(t, err, shared.KindNotFound, "CUSTOMER_NOT_FOUND")

	all, err := f.service.List(ctx, testutil.ManagerPrincipal(), CustomerListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
}

func TestCustomerService_ListFilters(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()
	admin := testutil.AdminPrincipal()
	_, err := f.service.Create(ctx, admin, createRequest("a@client.test"))
	require.NoError(t, err)
	req := createRequest("b@client.test")
	req.Name = "Harbor Hotel"
	req.BusinessType = "hotel"
	req.Status = "lead"
	req.Tags = nil
	_, err = f.service.Create(ctx, admin, req)
	require.NoError(t, err)

	page, err := f.service.List(ctx, admin, CustomerListFilter{BusinessType: "hotel"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Harbor Hotel", page.Items[0].Name)
	assert.Empty(t, page.Items[0].Notes)

	page, err = f.service.List(ctx, admin, CustomerListFilter{Status: "lead"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	page, err = f.service.List(ctx, admin, CustomerListFilter{Search: "riverside"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	page, err = f.service.List(ctx, admin, CustomerListFilter{Tag: "vip"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestCustomerService_Update(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()
	admin := testutil.AdminPrincipal()
	c, err := f.service.Create(ctx, admin, createRequest("a@client.test"))
	require.NoError(t, err)
	_, err = f.service.Create(ctx, admin, createRequest("taken@client.test"))
	require.NoError(t, err)

	company := "Riverside Community College"
	count := 250
	resp, err := f.service.Update(ctx, admin, c.ID, UpdateCustomerRequest{Company: &company, EmployeeCount: &count})
	require.NoError(t, err)
	assert.Equal(t, company, resp.Company)
	assert.Equal(t, 250, resp.EmployeeCount)
	assert.Equal(t, "Riverside College", resp.Name)
	assert.Equal(t, 2, resp.Version)

	taken := "taken@client.test"
	_, err = f.service.Update(ctx, admin, c.ID, UpdateCustomerRequest{Email: &taken})
	requireCode(t, err, shared.KindConflict, "CUSTOMER_ALREADY_EXISTS")
}

func TestCustomerService_NotesAndCommunications(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()
	staff := testutil.StaffPrincipal(uuid.New())
	c, err := f.service.Create(ctx, staff, createRequest("a@client.test"))
	require.NoError(t, err)

	_, err = f.service.AddNote(ctx, staff, c.ID, NoteRequest{Content: "Prefers navy blue"})
	require.NoError(t, err)
	_, err = f.service.AddCommunication(ctx, staff, c.ID, CommunicationRequest{
		Type: "phone", Direction: "outbound", Content: "Discussed sizes", Outcome: "Send samples",
	})
	require.NoError(t, err)

	got, err := f.service.GetByID(ctx, staff, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "Prefers navy blue", got.Notes[0].Content)
	require.Len(t, got.Communications, 1)
	assert.Equal(t, shared.CommunicationPhone, got.Communications[0].Type)
	assert.NotNil(t, got.LastContact)

	_, err = f.service.AddCommunication(ctx, staff, c.ID, CommunicationRequest{Type: "pigeon", Direction: "outbound", Content: "x"})
	requireCode(t, err, shared.KindValidation, "INVALID_COMMUNICATION_TYPE")
}

func TestCustomerService_UpdateStatus(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()
	admin := testutil.AdminPrincipal()
	c, err := f.service.Create(ctx, admin, createRequest("a@client.test"))
	require.NoError(t, err)
	f.events.Reset()

	resp, err := f.service.UpdateStatus(ctx, admin, c.ID, CustomerStatusRequest{Status: "active", Notes: "Signed framework deal"})

	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)
	require.Len(t, resp.Notes, 1)
	assert.True(t, resp.Notes[0].IsInternal)
	assert.Contains(t, f.events.Types(), partner.EventTypeCustomerStatusChanged)
}

func TestCustomerService_Assign(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()
	staff := testutil.StaffPrincipal(uuid.New())
	unclaimed := testutil.CreateCustomer(t, f.db, "nobody@client.test", nil)

	_, err := f.service.Assign(ctx, staff, unclaimed.ID, AssignRequest{UserID: uuid.New()})
	assert.ErrorIs(t, err, identity.ErrPermissionDenied)

	resp, err := f.service.Assign(ctx, staff, unclaimed.ID, AssignRequest{UserID: staff.UserID, Notes: "Taking this one"})
	require.NoError(t, err)
	require.NotNil(t, resp.AssignedTo)
	assert.Equal(t, staff.UserID, *resp.AssignedTo)

	other := uuid.New()
	resp, err = f.service.Assign(ctx, testutil.ManagerPrincipal(), unclaimed.ID, AssignRequest{UserID: other})
	require.NoError(t, err)
	assert.Equal(t, other, *resp.AssignedTo)

	// no longer visible to the previous owner
	_, err = f.service.GetByID(ctx, staff, unclaimed.ID)
	requireCode(t, err, shared.KindNotFound, "CUSTOMER_NOT_FOUND")
}

func TestCustomerService_UpdateTags(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()
	admin := testutil.AdminPrincipal()
	c, err := f.service.Create(ctx, admin, createRequest("a@client.test"))
	require.NoError(t, err)

	resp, err := f.service.UpdateTags(ctx, admin, c.ID, TagsRequest{Add: []string{"Repeat", "repeat"}, Remove: []string{"vip"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"repeat"}, resp.Tags)
}

func TestCustomerService_Delete(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()
	staff := testutil.StaffPrincipal(uuid.New())
	c, err := f.service.Create(ctx, staff, createRequest("a@client.test"))
	require.NoError(t, err)

	err = f.service.Delete(ctx, staff, c.ID)
	assert.ErrorIs(t, err, identity.ErrNotOwner)

	require.NoError(t, f.service.Delete(ctx, testutil.ManagerPrincipal(), c.ID))

	_, err = f.service.GetByID(ctx, testutil.AdminPrincipal(), c.ID)
	requireCode(t, err, shared.KindNotFound, "CUSTOMER_NOT_FOUND")
}

func TestCustomerService_Delete_BlockedByOrders(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()
	admin := testutil.AdminPrincipal()
	c, err := f.service.Create(ctx, admin, createRequest("a@client.test"))
	require.NoError(t, err)
	order, err := trade.NewOrder("ORD2024010001", trade.OrderTypeOrder, c.ID, nil)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormOrderRepository(f.db).Create(ctx, order))

	err = f.service.Delete(ctx, admin, c.ID)
	requireCode(t, err, shared.KindConflict, "CUSTOMER_HAS_ORDERS")

	history, err := f.service.Orders(ctx, admin, c.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, history.Items, 1)
	assert.Equal(t, "ORD2024010001", history.Items[0].OrderNumber)
	assert.Equal(t, "draft", history.Items[0].Status)
}

func TestCustomerService_CountByStatus(t *testing.T) {
	f := newCustomerFixture(t)
	testutil.CreateCustomer(t, f.db, "a@client.test", nil)
	testutil.CreateCustomer(t, f.db, "b@client.test", nil)

	counts, err := f.service.CountByStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["prospect"])
	assert.Equal(t, int64(0), counts["active"])
	assert.Equal(t, int64(2), counts["total"])
}
