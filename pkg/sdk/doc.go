// Package geolocator runs geo-bounded YouTube searches in-process.
//
// A Session mirrors one map page: a point, a radius field, keyword fields
// and the last published result list.
//
//	client, _ := geolocator.New(ctx, apiKey)
//	s := client.NewSession()
//	_ = s.ClickMap(40, -75)
//	s.SlideRadius(25)
//	_ = s.SetKeyword(0, "music")
//	snap, _ := s.Go(ctx)
//
// One-shot queries skip the session:
//
//	videos, _ := client.Search().Near(40, -75).Radius(25).Keywords("live", "music").Do(ctx)
package geolocator
