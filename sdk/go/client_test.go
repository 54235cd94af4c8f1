package quotedesksdk

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ambroz/quotedesk/internal/api"
	"github.com/ambroz/quotedesk/internal/db"
	"github.com/ambroz/quotedesk/internal/store"
)

const (
	testUsername = "admin"
	testPassword = "correct horse battery staple"
)

// startTestServer runs the real API router against an in-memory database and
// returns an unauthenticated client pointed at it.
func startTestServer(t *testing.T) *Client {
	t.Helper()

	database := db.NewTestDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = store.CreateAdmin(context.Background(), database, testUsername, string(hash))
	require.NoError(t, err)

	srv := httptest.NewServer(api.NewRouter(database, "sdk-test-secret"))
	t.Cleanup(srv.Close)

	return New(srv.URL, nil)
}

// testSignature returns a small PNG data URI with visible ink.
func testSignature(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 40, 10))
	for x := 0; x < 40; x++ {
		img.Set(x, 5, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func testInput(t *testing.T) SubmissionInput {
	estimate := 120.0
	return SubmissionInput{
		Name:    "Jane Seller",
		Email:   "jane@example.com",
		Phone:   "555-0101",
		Address: "1 Main St",
		Items: []ItemInput{
			{ItemName: "Vintage radio", Condition: "Good", EstimatedValue: &estimate},
			{ItemName: "Record player", Description: "needs a new belt", Condition: "Fair"},
		},
		SellerNotes: "pickup preferred",
		Signature:   testSignature(t),
	}
}

func TestSubmitAndFetch(t *testing.T) {
	client := startTestServer(t)
	ctx := context.Background()

	sub, err := client.Submit(ctx, testInput(t))
	require.NoError(t, err)
	require.NotEmpty(t, sub.ID)
	require.Len(t, sub.Items, 2)
	assert.Equal(t, "Pending", sub.Items[0].Status)
	assert.Equal(t, 0, sub.Items[0].Position)
	assert.Equal(t, 1, sub.Items[1].Position)
	assert.Nil(t, sub.Items[0].AdminQuotedPrice)

	fetched, err := client.GetSellerSubmission(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, fetched.ID)
	assert.Equal(t, "Jane Seller", fetched.Name)
}

func TestSubmitValidationError(t *testing.T) {
	client := startTestServer(t)

	input := testInput(t)
	input.Email = "not-an-email"
	input.Items[1].ItemName = ""

	_, err := client.Submit(context.Background(), input)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "validation failed", apiErr.Message)
	assert.Contains(t, apiErr.Fields, "email")
	assert.Contains(t, apiErr.Fields, "items.1.itemName")
}

func TestLoginLogout(t *testing.T) {
	client := startTestServer(t)
	ctx := context.Background()

	_, err := client.ListSubmissions(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)

	err = client.Login(ctx, testUsername, "wrong")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)

	require.NoError(t, client.Login(ctx, testUsername, testPassword))
	require.NotEmpty(t, client.BearerToken)

	subs, err := client.ListSubmissions(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)

	token := client.BearerToken
	require.NoError(t, client.Logout(ctx))
	assert.Empty(t, client.BearerToken)

	// The revoked token must no longer work.
	client.BearerToken = token
	_, err = client.ListSubmissions(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)
}

func TestAdminWorkflow(t *testing.T) {
	client := startTestServer(t)
	ctx := context.Background()

	sub, err := client.Submit(ctx, testInput(t))
	require.NoError(t, err)

	require.NoError(t, client.Login(ctx, testUsername, testPassword))

	subs, err := client.ListSubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)

	item, err := client.UpdateItemPrice(ctx, sub.ID, 0, 42.5)
	require.NoError(t, err)
	require.NotNil(t, item.AdminQuotedPrice)
	assert.Equal(t, 42.5, *item.AdminQuotedPrice)
	assert.Equal(t, "Quoted", item.Status)

	item, err = client.UpdateItemStatus(ctx, sub.ID, 0, "Accepted")
	require.NoError(t, err)
	assert.Equal(t, "Accepted", item.Status)
	require.NotNil(t, item.AdminQuotedPrice)
	assert.Equal(t, 42.5, *item.AdminQuotedPrice)

	updated, err := client.UpdateNotes(ctx, sub.ID, "call before pickup")
	require.NoError(t, err)
	assert.Equal(t, "call before pickup", updated.AdminNotes)

	fetched, err := client.GetSubmission(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "call before pickup", fetched.AdminNotes)
	assert.Equal(t, "Accepted", fetched.Items[0].Status)
}

func TestRegister(t *testing.T) {
	client := startTestServer(t)
	ctx := context.Background()

	require.NoError(t, client.Login(ctx, testUsername, testPassword))

	admin, err := client.Register(ctx, "second", "another strong password")
	require.NoError(t, err)
	assert.Equal(t, "second", admin.Username)
	assert.NotZero(t, admin.ID)

	_, err = client.Register(ctx, testUsername, "another strong password")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
}
