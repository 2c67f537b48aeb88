package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/gogpu/vmap"
	"github.com/gogpu/vmap/session"
	"github.com/gogpu/vmap/store"
)

type createRequest struct {
	Type    string         `json:"type"`
	X       float64        `json:"x"`
	Y       float64        `json:"y"`
	Res     int            `json:"res"`
	Name    string         `json:"name"`
	Corners *[4]vmap.Point `json:"corners"`
}

type updateRequest struct {
	Name    *string `json:"name"`
	Locked  *bool   `json:"locked"`
	Hidden  *bool   `json:"hidden"`
	Texture *string `json:"texture"`
	Mask    *string `json:"mask"`
	Res     *int    `json:"res"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type shakeRequest struct {
	Strength float64 `json:"strength"`
	Speed    float64 `json:"speed"`
	Falloff  int     `json:"falloff"`
}

type layoutRequest struct {
	File string `json:"file"`
}

type libraryRequest struct {
	Name string `json:"name"`
}

func (s *Server) health(c fiber.Ctx) error {
	snap := s.sess.Snapshot()
	return c.JSON(fiber.Map{
		"status":   "alive",
		"mode":     snap.ModeName,
		"surfaces": len(snap.Surfaces),
	})
}

func (s *Server) listSurfaces(c fiber.Ctx) error {
	return c.JSON(s.sess.Snapshot().Surfaces)
}

func (s *Server) getSurface(c fiber.Ctx) error {
	id, err := surfaceID(c)
	if err != nil {
		return err
	}
	st, ok := s.sess.Snapshot().Surface(id)
	if !ok {
		return vmap.ErrSurfaceNotFound
	}
	return c.JSON(st)
}

func (s *Server) createSurface(c fiber.Ctx) error {
	var req createRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	if req.Type == "" {
		req.Type = vmap.KindQuad.String()
	}
	kind, err := vmap.ParseKind(req.Type)
	if err != nil {
		return err
	}
	if req.Res == 0 {
		req.Res = vmap.SpawnResolution
	}
	if err := checkResolution(req.Res); err != nil {
		return err
	}

	id := -1
	err = s.do(func(m *vmap.Mapper) error {
		var sf vmap.Surface
		switch {
		case kind == vmap.KindQuad && req.Corners != nil:
			sf = m.AddQuadCorners(*req.Corners, req.Res)
		case kind == vmap.KindQuad:
			sf = m.AddQuad(req.X, req.Y, req.Res)
		default:
			b := m.AddBezier(req.X, req.Y, req.Res)
			if req.Corners != nil {
				for i, p := range req.Corners {
					cur := b.Corner(i)
					b.MoveCorner(i, p.X-cur.X, p.Y-cur.Y)
				}
			}
			sf = b
		}
		if req.Name != "" {
			sf.SetName(req.Name)
		}
		id = sf.ID()
		return nil
	})
	if err != nil {
		return err
	}
	st, _ := s.sess.Snapshot().Surface(id)
	return c.Status(fiber.StatusCreated).JSON(st)
}

func (s *Server) updateSurface(c fiber.Ctx) error {
	id, err := surfaceID(c)
	if err != nil {
		return err
	}
	var req updateRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	if req.Res != nil {
		if err := checkResolution(*req.Res); err != nil {
			return err
		}
	}
	err = s.do(func(m *vmap.Mapper) error {
		sf, ok := m.Surface(id)
		if !ok {
			return vmap.ErrSurfaceNotFound
		}
		if req.Name != nil {
			sf.SetName(*req.Name)
		}
		if req.Locked != nil {
			sf.SetLocked(*req.Locked)
		}
		if req.Hidden != nil {
			sf.SetHidden(*req.Hidden)
		}
		if req.Texture != nil {
			sf.SetTextureFile(*req.Texture)
		}
		if req.Mask != nil {
			sf.SetMaskFile(*req.Mask)
		}
		if req.Res != nil {
			sf.SetResolution(*req.Res)
		}
		return nil
	})
	if err != nil {
		return err
	}
	st, _ := s.sess.Snapshot().Surface(id)
	return c.JSON(st)
}

func (s *Server) deleteSurface(c fiber.Ctx) error {
	id, err := surfaceID(c)
	if err != nil {
		return err
	}
	if err := s.do(func(m *vmap.Mapper) error { return m.RemoveSurface(id) }); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) bringToFront(c fiber.Ctx) error {
	id, err := surfaceID(c)
	if err != nil {
		return err
	}
	if err := s.do(func(m *vmap.Mapper) error { return m.BringToFront(id) }); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) getMode(c fiber.Ctx) error {
	return c.JSON(modeRequest{Mode: s.sess.Snapshot().ModeName})
}

func (s *Server) setMode(c fiber.Ctx) error {
	var req modeRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	mode, ok := vmap.ParseMode(req.Mode)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "mode must be calibrate or render")
	}
	if err := s.do(func(m *vmap.Mapper) error {
		m.SetMode(mode)
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(modeRequest{Mode: mode.String()})
}

func (s *Server) shake(c fiber.Ctx) error {
	req := shakeRequest{Strength: 100, Speed: 200, Falloff: 150}
	if err := decode(c, &req); err != nil {
		return err
	}
	if err := s.do(func(m *vmap.Mapper) error {
		m.ShakeAll(req.Strength, req.Speed, req.Falloff)
		return nil
	}); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusAccepted)
}

func (s *Server) saveLayout(c fiber.Ctx) error {
	var req layoutRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	err := s.do(func(m *vmap.Mapper) error {
		if req.File == "" {
			req.File = m.LayoutFile()
		}
		return m.Save(req.File)
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"file": req.File})
}

func (s *Server) loadLayout(c fiber.Ctx) error {
	var req layoutRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	var res vmap.LoadResult
	err := s.do(func(m *vmap.Mapper) error {
		if req.File == "" {
			req.File = m.LayoutFile()
		}
		var err error
		res, err = m.Load(req.File)
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"file": req.File, "loaded": res.Loaded, "skipped": res.Skipped})
}

// frame renders the current snapshot. The mode query parameter overrides
// the session mode for this frame only.
func (s *Server) frame(c fiber.Ctx) error {
	snap := *s.sess.Snapshot()
	if q := c.Query("mode"); q != "" {
		mode, ok := vmap.ParseMode(q)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "mode must be calibrate or render")
		}
		snap.Mode = mode
		snap.ModeName = mode.String()
	}

	var images vmap.ImageLoader
	if err := s.do(func(m *vmap.Mapper) error {
		images = m.Images()
		return nil
	}); err != nil {
		return err
	}

	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	if err := snap.Render(s.raster, images); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := s.raster.EncodePNG(&buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(buf.Bytes())
}

func (s *Server) listLibrary(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	list, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	if list == nil {
		list = []store.Layout{}
	}
	return c.JSON(list)
}

func (s *Server) saveLibrary(c fiber.Ctx) error {
	var req libraryRequest
	if err := decode(c, &req); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	var saved store.Layout
	err := s.sess.Do(ctx, func(m *vmap.Mapper) error {
		var err error
		saved, err = s.store.Save(ctx, req.Name, m)
		return err
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

// restoreLibrary loads a saved layout. The id "latest" picks the newest.
func (s *Server) restoreLibrary(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var (
		l   store.Layout
		err error
	)
	if c.Params("id") == "latest" {
		l, err = s.store.Latest(ctx)
	} else {
		var id uuid.UUID
		if id, err = layoutID(c); err != nil {
			return err
		}
		l, err = s.store.Get(ctx, id)
	}
	if err != nil {
		return err
	}

	var res vmap.LoadResult
	if err := s.sess.Do(ctx, func(m *vmap.Mapper) error {
		var err error
		res, err = l.Restore(m)
		return err
	}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": l.ID, "loaded": res.Loaded, "skipped": res.Skipped})
}

func (s *Server) deleteLibrary(c fiber.Ctx) error {
	id, err := layoutID(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// decode reads an optional JSON body into v.
func decode(c fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	return nil
}

func checkResolution(res int) error {
	if res < 1 || res > vmap.MaxResolution {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("res must be between 1 and %d", vmap.MaxResolution))
	}
	return nil
}

func surfaceID(c fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "surface id must be an integer")
	}
	return id, nil
}

func layoutID(c fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "layout id must be a uuid")
	}
	return id, nil
}

// errorHandler maps domain errors to status codes.
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, vmap.ErrSurfaceNotFound),
		errors.Is(err, vmap.ErrLayoutMissing),
		errors.Is(err, store.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, vmap.ErrSurfaceLocked):
		code = fiber.StatusConflict
	case errors.Is(err, vmap.ErrLayoutMalformed),
		errors.Is(err, vmap.ErrUnknownSurfaceType),
		errors.Is(err, vmap.ErrUnknownFormat):
		code = fiber.StatusBadRequest
	case errors.Is(err, session.ErrClosed),
		errors.Is(err, context.DeadlineExceeded):
		code = fiber.StatusServiceUnavailable
	}
	if code >= fiber.StatusInternalServerError {
		vmap.Logger().Error("remote: request failed", "method", c.Method(), "path", c.Path(), "err", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
