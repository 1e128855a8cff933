package server

import (
	"github.com/nezinomas/maps/internal/garmin"
	"github.com/nezinomas/maps/internal/track"

	"github.com/gofiber/fiber/v2"
)

// handleSync runs the full pipeline against the active trip: fetch new
// activities from Garmin, store their artifacts, then reconcile the
// database with the on-disk set. New tracks invalidate the cached map.
func (s *Server) handleSync(c *fiber.Ctx) error {
	active, err := s.trips.Active(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	api := newGarminAPIFn(s.Cfg)
	messages := garmin.NewSyncService(active, api, s.store).GetData(c.Context())
	if active == nil {
		return c.JSON(fiber.Map{"messages": messages})
	}

	data, err := track.NewSyncData(c.Context(), s.tracks, *active, s.store)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	status, created := track.NewSyncer(s.tracks, s.store, data).Create(c.Context())
	messages = append(messages, status)

	if created > 0 {
		s.maps.Invalidate(c.Context(), active.ID)
	}
	return c.JSON(fiber.Map{"messages": messages, "created": created})
}

// handleSaveTracks reconciles one trip from disk alone, no fetch.
func (s *Server) handleSaveTracks(c *fiber.Ctx) error {
	tr, err := s.trips.GetTrip(c.Context(), c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "trip not found")
	}

	data, err := track.NewSyncData(c.Context(), s.tracks, tr, s.store)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	status, created := track.NewSyncer(s.tracks, s.store, data).Create(c.Context())

	if created > 0 {
		s.maps.Invalidate(c.Context(), tr.ID)
	}
	return c.JSON(fiber.Map{"messages": []string{status}, "created": created})
}

// handleRewriteTracks wipes the trip's rows and rebuilds everything
// from the on-disk artifacts.
func (s *Server) handleRewriteTracks(c *fiber.Ctx) error {
	tr, err := s.trips.GetTrip(c.Context(), c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "trip not found")
	}

	// Snapshot the union before the wipe, otherwise the database half
	// of the candidate set is gone.
	data, err := track.NewSyncData(c.Context(), s.tracks, tr, s.store)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if err := s.tracks.DeleteByTrip(c.Context(), tr.ID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	status, created := track.NewSyncer(s.tracks, s.store, data).CreateOrUpdate(c.Context())

	s.maps.Invalidate(c.Context(), tr.ID)
	return c.JSON(fiber.Map{"messages": []string{status}, "created": created})
}

func (s *Server) handleMap(c *fiber.Ctx) error {
	tr, err := s.trips.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "trip not found")
	}

	doc, err := s.maps.GeoJSON(c.Context(), tr)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	c.Set("Content-Type", "application/geo+json")
	return c.Send(doc)
}

func (s *Server) handleSyncComments(c *fiber.Ctx) error {
	tr, err := s.trips.GetTrip(c.Context(), c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "trip not found")
	}

	if err := s.comments.PushCommentQty(c.Context(), tr); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleListComments(c *fiber.Ctx) error {
	tr, err := s.trips.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "trip not found")
	}

	rows, err := s.comments.List(c.Context(), tr.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(rows)
}
