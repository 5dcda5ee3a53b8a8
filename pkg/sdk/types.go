package geolocator

import (
	"time"

	"github.com/kailas-cloud/geolocator/internal/domain/search/result"
	"github.com/kailas-cloud/geolocator/internal/usecase/coordinator"
)

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Video is one search result. Fields the provider omitted are empty.
type Video struct {
	ID           string
	Title        string
	Description  string
	ChannelTitle string
	PublishedAt  string
	ThumbnailURL string
}

// Radius is the state of the radius field.
type Radius struct {
	Value   int  // meaningless when Empty
	Empty   bool // field cleared
	Slider  int  // what the slider shows
	Settled bool // inside [0,100]
}

// Failure describes the last failed search of a session.
type Failure struct {
	Kind    string // search_unavailable, search_rejected, projection_failed
	Status  int
	Reason  string
	Message string
}

// Snapshot is the published state of a session.
type Snapshot struct {
	Point     Point
	Radius    Radius
	Keywords  []string
	Results   []Video // fixed length; empty slots are zero Videos
	Filled    int
	Failure   *Failure
	Pending   bool
	Seq       uint64
	UpdatedAt time.Time
}

func videoFromRecord(r result.Record) Video {
	return Video{
		ID:           r.VideoID,
		Title:        r.Title,
		Description:  r.Description,
		ChannelTitle: r.ChannelTitle,
		PublishedAt:  r.PublishDate,
		ThumbnailURL: r.ThumbnailURL,
	}
}

func videosFromList(l result.List) []Video {
	records := l.Records()
	out := make([]Video, len(records))
	for i := range records {
		out[i] = videoFromRecord(records[i])
	}
	return out
}

func snapshotFromDomain(s *coordinator.Snapshot) Snapshot {
	out := Snapshot{
		Point: Point{Lat: s.Point.Lat, Lng: s.Point.Lng},
		Radius: Radius{
			Empty:   s.Radius.Empty(),
			Slider:  s.Radius.SliderValue(),
			Settled: s.Radius.Settled(),
		},
		Keywords:  s.Keywords,
		Results:   videosFromList(s.Results),
		Filled:    s.Results.Filled(),
		Pending:   s.Pending,
		Seq:       s.Seq,
		UpdatedAt: s.UpdatedAt,
	}
	if !s.Radius.Empty() {
		out.Radius.Value = s.Radius.Value()
	}
	if s.Error != nil {
		out.Failure = &Failure{
			Kind:    string(s.Error.Kind),
			Status:  s.Error.Status,
			Reason:  s.Error.Reason,
			Message: s.Error.Message,
		}
	}
	return out
}
