package ginserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"rento/internal/app/clock"
	"rento/internal/app/dto"
	"rento/internal/app/outbox"
	"rento/internal/app/services/auth"
	"rento/internal/app/wiring"
	"rento/internal/infra/config"
	"rento/internal/infra/obs"
	"rento/internal/infra/security"
	"rento/internal/infra/storage/memory"
	"rento/internal/infra/validation"
)

var testToday = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	events *memory.Outbox
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	factory := memory.NewFactory(store)
	events := memory.NewOutbox()
	validator, err := validation.New()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	codec, err := security.NewJWTCodec("test-secret", "rento")
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	authService := &auth.Service{
		UoWFactory:  factory,
		Passwords:   security.BcryptHasher{Cost: bcrypt.MinCost},
		Tokens:      codec,
		Revocations: memory.NewRevocationStore(),
		TokenTTL:    time.Hour,
		Clock:       clock.New(time.UTC),
	}
	buses := wiring.Build(wiring.Deps{
		UoWFactory:  factory,
		Outbox:      outbox.NewBuffered(events),
		Clock:       clock.Fixed(testToday, time.UTC),
		Idempotency: memory.NewIdempotencyStore(time.Hour),
		Validator:   validator,
	})

	handlers := Handlers{
		Booking:      BookingHandler{Commands: buses.Commands, Queries: buses.Queries},
		Listing:      ListingHandler{Queries: buses.Queries},
		HostListing:  HostListingHandler{Commands: buses.Commands, Queries: buses.Queries},
		Availability: AvailabilityHandler{Queries: buses.Queries},
		Reviews:      ReviewsHandler{Commands: buses.Commands, Queries: buses.Queries},
		Auth:         AuthHandler{Service: authService},
		Me:           MeHandler{Commands: buses.Commands, Queries: buses.Queries},
		Middleware:   AuthMiddleware{Service: authService},
	}
	health := obs.HealthHandlers{Now: func() time.Time { return testToday }}
	router := NewRouter(config.Config{Env: "test"}, obs.Middleware{}, health, handlers)
	return &testAPI{t: t, router: router, events: events}
}

func (a *testAPI) do(method, path, token string, body any, headers ...string) (int, apiResponse) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	var resp apiResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		a.t.Fatalf("%s %s: decode response %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, resp
}

func (a *testAPI) register(name string) (token, id string) {
	a.t.Helper()
	status, resp := a.do(http.MethodPost, "/api/users/register", "", map[string]any{
		"name": name, "email": name + "@example.com", "password": "secret1",
	})
	if status != http.StatusCreated {
		a.t.Fatalf("register %s: %d %s", name, status, resp.Message)
	}
	var result dto.AuthResult
	decode(a.t, resp.Data, &result)
	return result.Token, result.User.ID
}

func (a *testAPI) createListing(token string, price int64) string {
	a.t.Helper()
	status, resp := a.do(http.MethodPost, "/api/apartments", token, map[string]any{
		"title": "Nile view flat", "price": price, "location": "Cairo", "region": "Zamalek",
		"bedrooms": 2, "bathrooms": 1,
	})
	if status != http.StatusCreated {
		a.t.Fatalf("create listing: %d %s", status, resp.Message)
	}
	var listing dto.Listing
	decode(a.t, resp.Data, &listing)
	return listing.ID
}

func (a *testAPI) book(token, listingID, start, end string, headers ...string) (int, apiResponse) {
	a.t.Helper()
	return a.do(http.MethodPost, "/api/bookings", token, map[string]any{
		"apartment_id": listingID, "start_date": start, "end_date": end,
		"name": "Guest", "email": "guest@example.com", "phone": "+201000000000",
	}, headers...)
}

func decode(t *testing.T, raw json.RawMessage, out any) {
	t.Helper()
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode data %s: %v", raw, err)
	}
}

func TestHealthAndUnknownRoute(t *testing.T) {
	api := newTestAPI(t)
	status, resp := api.do(http.MethodGet, "/api/health", "", nil)
	if status != http.StatusOK || !resp.Success || resp.Message != "Rento API is running" {
		t.Fatalf("unexpected health response %d %+v", status, resp)
	}
	status, resp = api.do(http.MethodGet, "/api/nowhere", "", nil)
	if status != http.StatusNotFound || resp.Message != "API endpoint not found" {
		t.Fatalf("unexpected 404 response %d %+v", status, resp)
	}
}

func TestBookingsRequireAuthentication(t *testing.T) {
	api := newTestAPI(t)
	cases := []struct {
		name    string
		token   string
		message string
	}{
		{name: "missing", token: "", message: "Not authorized, no token"},
		{name: "garbage", token: "not-a-jwt", message: "Not authorized, token failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, resp := api.book(tc.token, "1", "2026-03-10", "2026-03-20")
			if status != http.StatusUnauthorized || resp.Message != tc.message {
				t.Fatalf("expected 401 %q, got %d %q", tc.message, status, resp.Message)
			}
		})
	}
}

func TestBookingLifecycle(t *testing.T) {
	api := newTestAPI(t)
	ownerToken, _ := api.register("owner")
	guestToken, _ := api.register("guest")
	listingID := api.createListing(ownerToken, 10000)

	status, resp := api.book(guestToken, listingID, "2026-03-10", "2026-03-20")
	if status != http.StatusCreated {
		t.Fatalf("create booking: %d %s", status, resp.Message)
	}
	var first dto.Booking
	decode(t, resp.Data, &first)
	if first.TotalPrice != 10000 || first.Status != "pending" {
		t.Fatalf("unexpected booking %+v", first)
	}

	status, resp = api.book(guestToken, listingID, "2026-03-20", "2026-03-25")
	if status != http.StatusBadRequest || resp.Message != "This apartment is already booked for the selected dates" {
		t.Fatalf("expected overlap rejection, got %d %q", status, resp.Message)
	}

	status, resp = api.book(guestToken, listingID, "2026-04-01", "2026-05-11")
	if status != http.StatusCreated {
		t.Fatalf("create long booking: %d %s", status, resp.Message)
	}
	var long dto.Booking
	decode(t, resp.Data, &long)
	if long.TotalPrice != 20000 {
		t.Fatalf("40 day stay should bill two months, got %d", long.TotalPrice)
	}

	status, resp = api.book(guestToken, listingID, "2026-02-28", "2026-03-05")
	if status != http.StatusBadRequest || resp.Message != "Start date cannot be in the past" {
		t.Fatalf("expected past start rejection, got %d %q", status, resp.Message)
	}

	confirmPath := fmt.Sprintf("/api/bookings/%s/confirm", first.ID)
	if status, resp = api.do(http.MethodPut, confirmPath, guestToken, nil); status != http.StatusForbidden {
		t.Fatalf("guest confirm: expected 403, got %d %q", status, resp.Message)
	}
	if status, resp = api.do(http.MethodPut, confirmPath, ownerToken, nil); status != http.StatusOK {
		t.Fatalf("owner confirm: %d %q", status, resp.Message)
	}
	if status, resp = api.do(http.MethodPut, confirmPath, ownerToken, nil); status != http.StatusBadRequest {
		t.Fatalf("second confirm: expected 400, got %d %q", status, resp.Message)
	}

	cancelPath := fmt.Sprintf("/api/bookings/%s/cancel", first.ID)
	if status, resp = api.do(http.MethodPut, cancelPath, guestToken, nil); status != http.StatusOK {
		t.Fatalf("cancel: %d %q", status, resp.Message)
	}
	status, resp = api.do(http.MethodPut, cancelPath, guestToken, nil)
	if status != http.StatusBadRequest || resp.Message != "Booking is already cancelled" {
		t.Fatalf("second cancel: %d %q", status, resp.Message)
	}

	if status, resp = api.book(guestToken, listingID, "2026-03-10", "2026-03-20"); status != http.StatusCreated {
		t.Fatalf("rebook after cancel: %d %q", status, resp.Message)
	}

	status, resp = api.do(http.MethodGet, "/api/bookings?status=cancelled", guestToken, nil)
	if status != http.StatusOK || resp.Count == nil || *resp.Count != 1 {
		t.Fatalf("expected one cancelled booking, got %d %+v", status, resp)
	}
	status, _ = api.do(http.MethodGet, "/api/bookings/"+first.ID, ownerToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("bookings of other users must be hidden, got %d", status)
	}
	if len(api.events.Pending()) == 0 {
		t.Fatalf("expected booking events in the outbox")
	}
}

func TestBookingIdempotencyKeyReplays(t *testing.T) {
	api := newTestAPI(t)
	ownerToken, _ := api.register("owner")
	guestToken, _ := api.register("guest")
	listingID := api.createListing(ownerToken, 9000)

	var ids []string
	for i := 0; i < 2; i++ {
		status, resp := api.book(guestToken, listingID, "2026-03-10", "2026-03-20", "Idempotency-Key", "abc")
		if status != http.StatusCreated {
			t.Fatalf("attempt %d: %d %s", i, status, resp.Message)
		}
		var b dto.Booking
		decode(t, resp.Data, &b)
		ids = append(ids, b.ID)
	}
	if ids[0] != ids[1] {
		t.Fatalf("replay returned a different booking: %v", ids)
	}
}

func TestConcurrentBookingsExactlyOneWins(t *testing.T) {
	api := newTestAPI(t)
	ownerToken, _ := api.register("owner")
	guestToken, _ := api.register("guest")
	listingID := api.createListing(ownerToken, 9000)

	const attempts = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		statuses = map[int]int{}
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString(
				fmt.Sprintf(`{"apartment_id":%q,"start_date":"2026-06-01","end_date":"2026-06-10","name":"G","email":"g@example.com","phone":"1"}`, listingID)))
			req.Header.Set("Authorization", "Bearer "+guestToken)
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			api.router.ServeHTTP(rec, req)
			mu.Lock()
			statuses[rec.Code]++
			mu.Unlock()
		}()
	}
	wg.Wait()
	if statuses[http.StatusCreated] != 1 || statuses[http.StatusBadRequest] != attempts-1 {
		t.Fatalf("expected one winner, got %v", statuses)
	}
}

func TestReviewsAndFavorites(t *testing.T) {
	api := newTestAPI(t)
	ownerToken, _ := api.register("owner")
	guestToken, _ := api.register("guest")
	listingID := api.createListing(ownerToken, 9000)

	review := map[string]any{"apartment_id": listingID, "rating": 4, "comment": "Quiet and bright"}
	if status, resp := api.do(http.MethodPost, "/api/reviews", guestToken, review); status != http.StatusCreated {
		t.Fatalf("submit review: %d %s", status, resp.Message)
	}
	if status, _ := api.do(http.MethodPost, "/api/reviews", guestToken, review); status != http.StatusConflict {
		t.Fatalf("second review: expected 409, got %d", status)
	}
	status, resp := api.do(http.MethodGet, "/api/reviews/apartment/"+listingID, "", nil)
	if status != http.StatusOK {
		t.Fatalf("list reviews: %d %s", status, resp.Message)
	}
	var reviews dto.ListingReviews
	decode(t, resp.Data, &reviews)
	if reviews.Stats.Total != 1 || reviews.Stats.Average != 4 || reviews.Reviews[0].UserName != "guest" {
		t.Fatalf("unexpected reviews %+v", reviews)
	}

	favPath := "/api/users/favorites/" + listingID
	if status, resp := api.do(http.MethodPost, favPath, guestToken, nil); status != http.StatusCreated {
		t.Fatalf("add favorite: %d %s", status, resp.Message)
	}
	if status, _ := api.do(http.MethodPost, favPath, guestToken, nil); status != http.StatusConflict {
		t.Fatalf("second favorite: expected 409, got %d", status)
	}

	_, resp = api.do(http.MethodGet, "/api/apartments", guestToken, nil)
	var listings []dto.Listing
	decode(t, resp.Data, &listings)
	if len(listings) != 1 || listings[0].Favorite == nil || !*listings[0].Favorite || listings[0].ReviewCount != 1 {
		t.Fatalf("unexpected catalog for guest %+v", listings)
	}
	_, resp = api.do(http.MethodGet, "/api/apartments", "", nil)
	var anonymous []dto.Listing
	decode(t, resp.Data, &anonymous)
	if len(anonymous) != 1 || anonymous[0].Favorite != nil {
		t.Fatalf("anonymous catalog must not mark favorites %+v", anonymous)
	}

	if status, _ := api.do(http.MethodDelete, favPath, guestToken, nil); status != http.StatusOK {
		t.Fatalf("remove favorite: %d", status)
	}
	if status, _ := api.do(http.MethodDelete, favPath, guestToken, nil); status != http.StatusNotFound {
		t.Fatalf("remove missing favorite: expected 404, got %d", status)
	}
}

func TestListingMutationsAreOwnerOnly(t *testing.T) {
	api := newTestAPI(t)
	ownerToken, _ := api.register("owner")
	guestToken, _ := api.register("guest")
	listingID := api.createListing(ownerToken, 9000)

	path := "/api/apartments/" + listingID
	if status, _ := api.do(http.MethodPut, path, guestToken, map[string]any{"price": 1}); status != http.StatusForbidden {
		t.Fatalf("guest update: expected 403, got %d", status)
	}
	status, resp := api.do(http.MethodPut, path, ownerToken, map[string]any{"price": 12000})
	if status != http.StatusOK {
		t.Fatalf("owner update: %d %s", status, resp.Message)
	}
	var updated dto.Listing
	decode(t, resp.Data, &updated)
	if updated.Price != 12000 || updated.Title != "Nile view flat" {
		t.Fatalf("partial update lost fields %+v", updated)
	}
	if status, _ := api.do(http.MethodDelete, path, guestToken, nil); status != http.StatusForbidden {
		t.Fatalf("guest delete: expected 403, got %d", status)
	}
	if status, _ := api.do(http.MethodDelete, path, ownerToken, nil); status != http.StatusOK {
		t.Fatalf("owner delete: %d", status)
	}
	if status, _ := api.do(http.MethodGet, path, "", nil); status != http.StatusNotFound {
		t.Fatalf("deleted listing still visible: %d", status)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("guest")
	if status, _ := api.do(http.MethodGet, "/api/users/profile", token, nil); status != http.StatusOK {
		t.Fatalf("profile before logout: %d", status)
	}
	if status, _ := api.do(http.MethodPost, "/api/users/logout", token, nil); status != http.StatusOK {
		t.Fatalf("logout: %d", status)
	}
	if status, _ := api.do(http.MethodGet, "/api/users/profile", token, nil); status != http.StatusUnauthorized {
		t.Fatalf("profile after logout: expected 401, got %d", status)
	}
}

func TestQuoteAndCalendar(t *testing.T) {
	api := newTestAPI(t)
	ownerToken, _ := api.register("owner")
	guestToken, _ := api.register("guest")
	listingID := api.createListing(ownerToken, 10000)
	if status, resp := api.book(guestToken, listingID, "2026-03-10", "2026-03-20"); status != http.StatusCreated {
		t.Fatalf("book: %d %s", status, resp.Message)
	}

	status, resp := api.do(http.MethodGet, "/api/apartments/"+listingID+"/quote?start_date=2026-04-01&end_date=2026-05-11", "", nil)
	if status != http.StatusOK {
		t.Fatalf("quote: %d %s", status, resp.Message)
	}
	var quote dto.Quote
	decode(t, resp.Data, &quote)
	if quote.BilledMonths != 2 || quote.TotalPrice != 20000 {
		t.Fatalf("unexpected quote %+v", quote)
	}

	status, resp = api.do(http.MethodGet, "/api/apartments/"+listingID+"/availability", "", nil)
	if status != http.StatusOK || resp.Count == nil || *resp.Count != 1 {
		t.Fatalf("calendar: %d %+v", status, resp)
	}
}
