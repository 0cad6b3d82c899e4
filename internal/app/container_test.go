package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	availabilityHttp "github.com/nekogravitycat/stadium-booking-backend/internal/availability/http"
	bookingHttp "github.com/nekogravitycat/stadium-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/stadium-booking-backend/internal/db"
	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
	stadiumHttp "github.com/nekogravitycat/stadium-booking-backend/internal/stadium/http"
	userHttp "github.com/nekogravitycat/stadium-booking-backend/internal/user/http"
)

// Monday; the clock is pinned a week earlier.
const bookingDate = "2030-01-07"

func fixedNow() time.Time { return time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC) }

func newTestContainer(t *testing.T, pool *pgxpool.Pool) *Container {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, err := NewContainer(Config{
		DBPool:            pool,
		JWTSecret:         "test-secret",
		JWTTTL:            30 * time.Minute,
		PasswordCost:      4, // Lower cost for testing purposes
		Logger:            zerolog.Nop(),
		Location:          time.UTC,
		Now:               fixedNow,
		BookingRateLimit:  10,
		BookingRateWindow: time.Hour,
		UploadDir:         t.TempDir(),
	})
	require.NoError(t, err)
	return c
}

func executeRequest(router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouterWiring(t *testing.T) {
	router := newTestContainer(t, nil).Router

	w := executeRequest(router, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = executeRequest(router, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = executeRequest(router, http.MethodPost, "/v1/bookings", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = executeRequest(router, http.MethodPost, "/v1/stadiums", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = executeRequest(router, http.MethodGet, "/v1/stadiums/nope/availability?date="+bookingDate, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = executeRequest(router, http.MethodGet, "/v1/notifications", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestBookingFlow runs against a real PostgreSQL when TEST_DB_DSN is set.
func TestBookingFlow(t *testing.T) {
	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, db.ApplySchema(ctx, pool))
	_, err = pool.Exec(ctx, "TRUNCATE TABLE public.notifications, public.bookings, public.files, public.stadiums, public.users CASCADE")
	require.NoError(t, err)

	container := newTestContainer(t, pool)
	router := container.Router

	login := func(email, role string) string {
		w := executeRequest(router, http.MethodPost, "/v1/auth/register",
			userHttp.RegisterRequest{Email: email, Password: "password123", Role: role}, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = executeRequest(router, http.MethodPost, "/v1/auth/login",
			userHttp.LoginRequest{Email: email, Password: "password123"}, "")
		require.Equal(t, http.StatusOK, w.Code)
		var resp userHttp.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.AccessToken
	}

	ownerToken := login("owner@stadium.test", "stadium_owner")
	playerToken := login("player@stadium.test", "player")
	otherToken := login("other@stadium.test", "player")

	var stadiumID string
	t.Run("Owner creates stadium", func(t *testing.T) {
		w := executeRequest(router, http.MethodPost, "/v1/stadiums", stadiumHttp.CreateStadiumRequest{
			Name:         "Riverside Arena",
			City:         "Rabat",
			PricePerHour: 25,
			WeeklySchedule: schedule.NewWeekly(map[time.Weekday][]schedule.TimeLabel{
				time.Monday: {"09:00", "10:00", "11:00"},
			}),
		}, ownerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp stadiumHttp.StadiumResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		stadiumID = resp.ID
	})

	slots := func(t *testing.T) map[string]string {
		w := executeRequest(router, http.MethodGet, "/v1/stadiums/"+stadiumID+"/availability?date="+bookingDate, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var resp availabilityHttp.SlotsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		out := make(map[string]string, len(resp.Slots))
		for _, s := range resp.Slots {
			out[s.Time] = s.Reason
		}
		return out
	}

	var bookingID string
	t.Run("Player books two hours", func(t *testing.T) {
		got := slots(t)
		assert.Equal(t, "open", got["09:00"])
		assert.Equal(t, "outside_operating_hours", got["12:00"])

		w := executeRequest(router, http.MethodPost, "/v1/bookings", bookingHttp.CreateBookingRequest{
			StadiumID: stadiumID, Date: bookingDate, StartTime: "09:00", EndTime: "11:00",
		}, playerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp bookingHttp.BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		bookingID = resp.ID
		assert.Equal(t, 50.0, resp.TotalPrice)

		got = slots(t)
		assert.Equal(t, "already_booked", got["09:00"])
		assert.Equal(t, "already_booked", got["10:00"])
		assert.Equal(t, "open", got["11:00"])
	})

	t.Run("Overlapping booking is rejected", func(t *testing.T) {
		w := executeRequest(router, http.MethodPost, "/v1/bookings", bookingHttp.CreateBookingRequest{
			StadiumID: stadiumID, Date: bookingDate, StartTime: "10:00",
		}, otherToken)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Owner blocks a slot", func(t *testing.T) {
		w := executeRequest(router, http.MethodPut, "/v1/stadiums/"+stadiumID+"/overrides/"+bookingDate+"/slots/11:00",
			stadiumHttp.SlotOverrideRequest{State: "unavailable"}, ownerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "owner_blocked", slots(t)["11:00"])

		w = executeRequest(router, http.MethodPost, "/v1/stadiums/"+stadiumID+"/availability/validate",
			availabilityHttp.ValidateRequest{Date: bookingDate, StartTime: "11:00", EndTime: "12:00"}, otherToken)
		require.Equal(t, http.StatusOK, w.Code)
		var v availabilityHttp.ValidationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
		assert.False(t, v.Valid)
		assert.Equal(t, "owner_blocked", v.Reason)
	})

	t.Run("Cancellation frees the hours", func(t *testing.T) {
		w := executeRequest(router, http.MethodPost, "/v1/bookings/"+bookingID+"/cancel", bookingHttp.CancelBookingRequest{Reason: "rain"}, ownerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "open", slots(t)["10:00"])

		w = executeRequest(router, http.MethodPost, "/v1/bookings/"+bookingID+"/confirm", nil, ownerToken)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Player is notified", func(t *testing.T) {
		require.NoError(t, container.Dispatcher.Wait(ctx))
		w := executeRequest(router, http.MethodGet, "/v1/notifications/unread-count", nil, playerToken)
		require.Equal(t, http.StatusOK, w.Code)
		// Request sent + cancelled by owner.
		assert.JSONEq(t, `{"unread":2}`, w.Body.String())
	})

	t.Run("Deleting the stadium keeps booking history", func(t *testing.T) {
		var pastID string
		err := pool.QueryRow(ctx, `
			INSERT INTO public.bookings (stadium_id, user_id, booking_date, start_time, end_time, status)
			SELECT $1, id, '2029-12-31', '09:00', '10:00', 'confirmed' FROM public.users WHERE email = 'player@stadium.test'
			RETURNING id`, stadiumID).Scan(&pastID)
		require.NoError(t, err)

		w := executeRequest(router, http.MethodPost, "/v1/bookings", bookingHttp.CreateBookingRequest{
			StadiumID: stadiumID, Date: bookingDate, StartTime: "09:00",
		}, otherToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var upcoming bookingHttp.BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &upcoming))

		w = executeRequest(router, http.MethodDelete, "/v1/stadiums/"+stadiumID, nil, ownerToken)
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		w = executeRequest(router, http.MethodGet, "/v1/stadiums/"+stadiumID, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = executeRequest(router, http.MethodGet, "/v1/bookings/"+pastID, nil, playerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var past bookingHttp.BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &past))
		assert.Equal(t, "confirmed", past.Status)
		assert.Equal(t, "Riverside Arena", past.Stadium.Name)

		w = executeRequest(router, http.MethodGet, "/v1/bookings/"+upcoming.ID, nil, otherToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got bookingHttp.BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "cancelled", got.Status)
		require.NotNil(t, got.CancelReason)
		assert.Equal(t, "stadium removed", *got.CancelReason)
	})
}
