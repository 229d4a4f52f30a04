package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/zvx-echo6/Meshing-Around-WebGUI-Integrated/internal/schedule"
)

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

func newScheduleApp(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}
	h := &Schedules{Store: schedule.NewStore(filepath.Join(t.TempDir(), "schedules.json"))}
	e.GET("/api/schedules", h.List)
	e.POST("/api/schedules", h.Create)
	e.GET("/api/schedules/:id", h.Get)
	e.PUT("/api/schedules/:id", h.Update)
	e.DELETE("/api/schedules/:id", h.Delete)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const validSchedule = `{
	"enabled": true,
	"name": "morning net",
	"frequency": "day",
	"time": "09:00",
	"message": "net starts in 15 minutes",
	"action": "message",
	"channel": 2,
	"interface": 1
}`

func TestSchedulesCRUD(t *testing.T) {
	e := newScheduleApp(t)

	rec := doJSON(e, http.MethodPost, "/api/schedules", validSchedule)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	var created struct {
		Data struct {
			Schedule schedule.Item `json:"schedule"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if created.Data.Schedule.ID != 1 {
		t.Fatalf("id = %d, want 1", created.Data.Schedule.ID)
	}

	rec = doJSON(e, http.MethodGet, "/api/schedules", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Fatalf("list body = %s", rec.Body)
	}

	rec = doJSON(e, http.MethodPut, "/api/schedules/1",
		strings.Replace(validSchedule, "morning net", "evening net", 1))
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body)
	}
	rec = doJSON(e, http.MethodGet, "/api/schedules/1", "")
	if !strings.Contains(rec.Body.String(), "evening net") {
		t.Fatalf("get after update = %s", rec.Body)
	}

	rec = doJSON(e, http.MethodDelete, "/api/schedules/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doJSON(e, http.MethodGet, "/api/schedules/1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d", rec.Code)
	}
}

func TestSchedulesCreateRejectsBadPayload(t *testing.T) {
	e := newScheduleApp(t)

	cases := []string{
		`{"name": "no frequency", "action": "message", "interface": 1}`,
		`{"name": "bad frequency", "frequency": "fortnightly", "action": "message", "interface": 1}`,
		`{"name": "bad time", "frequency": "day", "time": "25:99", "action": "message", "interface": 1}`,
		`{"name": "bad interface", "frequency": "day", "action": "message", "interface": 12}`,
	}
	for _, body := range cases {
		rec := doJSON(e, http.MethodPost, "/api/schedules", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("payload %s accepted with %d", body, rec.Code)
		}
	}

	rec := doJSON(e, http.MethodGet, "/api/schedules", "")
	if !strings.Contains(rec.Body.String(), `"total":0`) {
		t.Errorf("rejected payload was stored: %s", rec.Body)
	}
}

func TestSchedulesInvalidID(t *testing.T) {
	e := newScheduleApp(t)
	rec := doJSON(e, http.MethodGet, "/api/schedules/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = doJSON(e, http.MethodDelete, "/api/schedules/99", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
