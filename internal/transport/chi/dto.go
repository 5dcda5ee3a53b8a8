package chi

import (
	"time"

	"github.com/kailas-cloud/geolocator/internal/domain/search/result"
	domusage "github.com/kailas-cloud/geolocator/internal/domain/usage"
	"github.com/kailas-cloud/geolocator/internal/usecase/coordinator"
	healthuc "github.com/kailas-cloud/geolocator/internal/usecase/health"
)

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeSessionNotFound   ErrorCode = "session_not_found"
	ErrorCodeTooManySessions   ErrorCode = "too_many_sessions"
	ErrorCodeInvalidPoint      ErrorCode = "invalid_point"
	ErrorCodeInvalidSlot       ErrorCode = "invalid_slot"
	ErrorCodeInvalidRequest    ErrorCode = "invalid_request"
	ErrorCodeSearchSuperseded  ErrorCode = "search_superseded"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body. Refused searches carry the snapshot.
type ErrorResponse struct {
	Code     ErrorCode         `json:"code"`
	Message  string            `json:"message"`
	Snapshot *SnapshotResponse `json:"snapshot,omitempty"`
}

// PointBody is a map click or marker drop.
type PointBody struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// RadiusBody carries a slider or number-field value; null clears the field.
type RadiusBody struct {
	Value *int `json:"value"`
}

// KeywordBody replaces one keyword field.
type KeywordBody struct {
	Text string `json:"text"`
}

// PointResponse is a published GeoPoint.
type PointResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RadiusResponse describes the radius field as typed and as shown on the slider.
type RadiusResponse struct {
	Value   *int `json:"value"`
	Slider  int  `json:"slider"`
	Settled bool `json:"settled"`
}

// RecordResponse is one result slot.
type RecordResponse struct {
	Title        string `json:"title"`
	PublishDate  string `json:"publish_date"`
	ThumbnailURL string `json:"thumbnail_url"`
	Description  string `json:"description"`
	VideoID      string `json:"video_id"`
	ChannelTitle string `json:"channel_title"`
}

// IndicatorResponse is the error indicator of the last failed search.
type IndicatorResponse struct {
	Kind    string `json:"kind"`
	Status  int    `json:"status,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

// SnapshotResponse is the published session state.
type SnapshotResponse struct {
	SessionID string             `json:"session_id"`
	Point     PointResponse      `json:"point"`
	Radius    RadiusResponse     `json:"radius"`
	Keywords  []string           `json:"keywords"`
	Results   []RecordResponse   `json:"results"`
	Filled    int                `json:"filled"`
	Error     *IndicatorResponse `json:"error"`
	Pending   bool               `json:"pending"`
	Seq       uint64             `json:"seq"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// UsageResponse is the GET /usage body.
type UsageResponse struct {
	Period      string         `json:"period"`
	PeriodStart time.Time      `json:"period_start"`
	PeriodEnd   time.Time      `json:"period_end"`
	Provider    string         `json:"provider"`
	Searches    int64          `json:"searches"`
	UnitsUsed   int64          `json:"units_used"`
	Budget      BudgetResponse `json:"budget"`
}

// BudgetResponse is the quota state; limit 0 and remaining -1 mean unlimited.
type BudgetResponse struct {
	UnitsLimit     int64     `json:"units_limit"`
	UnitsRemaining int64     `json:"units_remaining"`
	IsExhausted    bool      `json:"is_exhausted"`
	ResetsAt       time.Time `json:"resets_at"`
}

func snapshotToResponse(id string, snap *coordinator.Snapshot) SnapshotResponse {
	radius := RadiusResponse{
		Slider:  snap.Radius.SliderValue(),
		Settled: snap.Radius.Settled(),
	}
	if !snap.Radius.Empty() {
		v := snap.Radius.Value()
		radius.Value = &v
	}

	records := snap.Results.Records()
	results := make([]RecordResponse, len(records))
	for i := range records {
		results[i] = recordToResponse(records[i])
	}

	resp := SnapshotResponse{
		SessionID: id,
		Point:     PointResponse{Lat: snap.Point.Lat, Lng: snap.Point.Lng},
		Radius:    radius,
		Keywords:  snap.Keywords,
		Results:   results,
		Filled:    snap.Results.Filled(),
		Pending:   snap.Pending,
		Seq:       snap.Seq,
		UpdatedAt: snap.UpdatedAt,
	}
	if snap.Error != nil {
		resp.Error = &IndicatorResponse{
			Kind:    string(snap.Error.Kind),
			Status:  snap.Error.Status,
			Reason:  snap.Error.Reason,
			Message: snap.Error.Message,
		}
	}
	return resp
}

func recordToResponse(r result.Record) RecordResponse {
	return RecordResponse{
		Title:        r.Title,
		PublishDate:  r.PublishDate,
		ThumbnailURL: r.ThumbnailURL,
		Description:  r.Description,
		VideoID:      r.VideoID,
		ChannelTitle: r.ChannelTitle,
	}
}

func healthToResponse(report healthuc.Report) HealthResponse {
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{Status: string(report.Status), Checks: checks}
}

func usageToResponse(r *domusage.Report) UsageResponse {
	b := r.Budget()
	return UsageResponse{
		Period:      string(r.Period()),
		PeriodStart: time.UnixMilli(r.PeriodStart()).UTC(),
		PeriodEnd:   time.UnixMilli(r.PeriodEnd()).UTC(),
		Provider:    r.Provider(),
		Searches:    r.Searches(),
		UnitsUsed:   r.UnitsUsed(),
		Budget: BudgetResponse{
			UnitsLimit:     b.UnitsLimit(),
			UnitsRemaining: b.UnitsRemaining(),
			IsExhausted:    b.IsExhausted(),
			ResetsAt:       time.UnixMilli(b.ResetsAt()).UTC(),
		},
	}
}
