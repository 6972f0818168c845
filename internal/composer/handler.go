package composer

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"segment-studio/internal/geometry"
	"segment-studio/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

const (
	playlistContentType = "application/vnd.apple.mpegurl"
	yamlContentType     = "application/yaml"

	// OwnerHeader names the acting context for roster and global audio edits.
	OwnerHeader = "X-Studio-Owner"

	maxImportBytes = 4 << 20
)

// Handler exposes the authoring engine over HTTP using go-chi.
type Handler struct {
	svc     *Service
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler that uses the given Service, Logger, and optional Metrics.
// Metrics may be nil to disable metric recording (e.g. in tests).
func NewHandler(svc *Service, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, log: log, metrics: m}
}

// Routes mounts every endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/materials", h.ListMaterials)
	r.Get("/materials/{material_id}", h.GetMaterial)

	r.Post("/projects", h.CreateProject)
	r.Post("/projects/import", h.ImportProject)
	r.Route("/projects/{project_id}", func(r chi.Router) {
		r.Get("/", h.GetProject)
		r.Delete("/", h.DeleteProject)
		r.Post("/save", h.SaveProject)
		r.Get("/export", h.ExportProject)
		r.Get("/preview", h.GetPreviewFrame)
		r.Get("/preview.m3u8", h.GetPreviewPlaylist)
		r.Patch("/audio", h.UpdateGlobalAudio)
		r.Put("/surface", h.SetSurface)
		r.Post("/pointer", h.Pointer)

		r.Post("/segments", h.AppendSegment)
		r.Post("/segments/import", h.ImportScripts)
		r.Post("/segments/delete", h.RemoveSegments)
		r.Route("/segments/{segment_id}", func(r chi.Router) {
			r.Get("/", h.GetSegment)
			r.Post("/move", h.MoveSegment)
			r.Put("/name", h.RenameSegment)
			r.Put("/script", h.UpdateScript)
			r.Put("/material", h.AttachMaterial)
			r.Delete("/material", h.DetachMaterial)
			r.Put("/variants", h.SetScriptVariants)
			r.Post("/variants", h.AddScriptVariant)
			r.Delete("/variants", h.ClearScriptVariants)
			r.Delete("/variants/{variant_id}", h.RemoveScriptVariant)
			r.Get("/digital-humans", h.GetSegmentDigitalHumans)
			r.Put("/digital-humans", h.SetDigitalHumansEnabled)
			r.Get("/audio", h.GetSegmentAudio)
			r.Patch("/audio", h.UpdateSegmentAudio)
			r.Post("/audio/tracks", h.AddBGMTrack)
			r.Delete("/audio/tracks/{track_id}", h.RemoveBGMTrack)
			r.Get("/overlays", h.ListOverlays)
			r.Post("/overlays", h.CreateOverlay)
		})

		r.Patch("/overlays/{overlay_id}", h.UpdateOverlay)
		r.Delete("/overlays/{overlay_id}", h.RemoveOverlay)

		r.Get("/roster", h.ListDigitalHumans)
		r.Post("/roster", h.AddDigitalHuman)
		r.Post("/roster/handover", h.Handover)
		r.Patch("/roster/{human_id}", h.UpdateDigitalHuman)
		r.Delete("/roster/{human_id}", h.RemoveDigitalHuman)
	})
}

// session resolves {project_id}; on failure the response is already written.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := ProjectID(chi.URLParam(r, "project_id"))
	if id == "" {
		w.WriteHeader(http.StatusBadRequest)
		return nil, false
	}
	sess, err := h.svc.Open(id)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return sess, true
}

func segmentParam(r *http.Request) SegmentID {
	return SegmentID(chi.URLParam(r, "segment_id"))
}

func actor(r *http.Request) Owner {
	return Owner{Name: r.Header.Get(OwnerHeader)}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.log.Debug("invalid request body", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error      string `json:"error"`
	Controller string `json:"controller,omitempty"`
}

// fail maps engine errors onto status codes. Rejections are part of normal
// operation and logged at info; anything unexpected is an error.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var rejected *RejectedError
	switch {
	case errors.As(err, &rejected):
		h.reject(r, "permission", err)
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error(), Controller: rejected.Controller})
	case errors.Is(err, ErrRosterFull), errors.Is(err, ErrLastVariant), errors.Is(err, ErrNoVariants):
		h.reject(r, "capacity", err)
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, ErrScriptReadOnly):
		h.reject(r, "read_only", err)
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, ErrProjectNotFound), errors.Is(err, ErrSegmentNotFound),
		errors.Is(err, ErrOverlayNotFound), errors.Is(err, ErrDigitalHumanNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, ErrUnknownOverlayKind), errors.Is(err, ErrInvalidLoopMode):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		h.log.Error("request failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func (h *Handler) reject(r *http.Request, reason string, err error) {
	h.log.Info("operation rejected",
		slog.String("project_id", chi.URLParam(r, "project_id")),
		slog.String("reason", reason),
		slog.String("error", err.Error()))
	if h.metrics != nil {
		h.metrics.IncRejections(reason)
	}
}

func (h *Handler) applied(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, v)
	if h.metrics != nil {
		h.metrics.IncMutations()
	}
}

// respond writes v after a mutation or maps err.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.applied(w, http.StatusOK, v)
}

// ListMaterials handles GET /materials.
func (h *Handler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Catalog().ListMaterials())
}

// GetMaterial handles GET /materials/{material_id}.
func (h *Handler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	m, ok := h.svc.Catalog().GetMaterial(MaterialID(chi.URLParam(r, "material_id")))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// CreateProject handles POST /projects. Body: { "name": "Spring promo" }.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	sess := h.svc.CreateProject(body.Name)
	h.log.Info("project created", slog.String("project_id", string(sess.ID())))
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

// ImportProject handles POST /projects/import with a YAML project document.
func (h *Handler) ImportProject(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	p, err := DecodeProject(data)
	if err != nil {
		h.log.Debug("invalid project document", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	sess := h.svc.Import(*p)
	h.log.Info("project imported", slog.String("project_id", string(sess.ID())))
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

// GetProject handles GET /projects/{project_id}.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// DeleteProject handles DELETE /projects/{project_id}.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := ProjectID(chi.URLParam(r, "project_id"))
	if err := h.svc.Delete(id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("project deleted", slog.String("project_id", string(id)))
	w.WriteHeader(http.StatusNoContent)
}

// SaveProject handles POST /projects/{project_id}/save.
func (h *Handler) SaveProject(w http.ResponseWriter, r *http.Request) {
	id := ProjectID(chi.URLParam(r, "project_id"))
	p, err := h.svc.Save(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("project saved", slog.String("project_id", string(id)), slog.Int("segments", len(p.Segments)))
	if h.metrics != nil {
		h.metrics.IncProjectsSaved()
	}
	writeJSON(w, http.StatusOK, p)
}

// ExportProject handles GET /projects/{project_id}/export.
func (h *Handler) ExportProject(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Export(ProjectID(chi.URLParam(r, "project_id")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", yamlContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetPreviewFrame handles GET /projects/{project_id}/preview?t=12.5.
// An empty timeline renders nothing (204).
func (h *Handler) GetPreviewFrame(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	t := 0.0
	if raw := r.URL.Query().Get("t"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		// Frame.Time is echoed as JSON, which has no NaN or Inf.
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		t = v
	}
	frame, ok := sess.FrameAt(t)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

// GetPreviewPlaylist handles GET /projects/{project_id}/preview.m3u8.
func (h *Handler) GetPreviewPlaylist(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", playlistContentType)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(sess.PreviewPlaylist()))
}

// UpdateGlobalAudio handles PATCH /projects/{project_id}/audio.
func (h *Handler) UpdateGlobalAudio(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var patch AudioSettings
	if !h.decode(w, r, &patch) {
		return
	}
	out, err := sess.UpdateGlobalAudio(actor(r), patch)
	h.respond(w, r, out, err)
}

// SetSurface handles PUT /projects/{project_id}/surface.
// Body: { "left": 0, "top": 0, "width": 360, "height": 640 }.
func (h *Handler) SetSurface(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var rect geometry.Rect
	if !h.decode(w, r, &rect) {
		return
	}
	sess.SetSurface(rect)
	w.WriteHeader(http.StatusNoContent)
}

type pointerEvent struct {
	Event     string    `json:"event"`
	ElementID ElementID `json:"elementId"`
	Handle    Handle    `json:"handle"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
}

type interactionBody struct {
	State     string      `json:"state"`
	ElementID ElementID   `json:"elementId,omitempty"`
	ZOrder    []ElementID `json:"zOrder"`
}

// Pointer handles POST /projects/{project_id}/pointer.
// Body: { "event": "down|move|up|leave", "elementId": "...", "handle": "body|resize", "x": 10, "y": 20 }.
func (h *Handler) Pointer(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var ev pointerEvent
	if !h.decode(w, r, &ev) {
		return
	}
	pt := geometry.Point{X: ev.X, Y: ev.Y}

	var err error
	switch ev.Event {
	case "down":
		if ev.Handle == "" {
			ev.Handle = HandleBody
		}
		err = sess.PointerDown(actor(r), ev.ElementID, ev.Handle, pt)
	case "move":
		err = sess.PointerMove(pt)
	case "up":
		sess.PointerUp()
	case "leave":
		sess.PointerLeave()
	default:
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	state, z := sess.Interaction()
	body := interactionBody{State: "idle", ZOrder: z}
	switch st := state.(type) {
	case Dragging:
		body.State, body.ElementID = "dragging", st.ElementID
	case Resizing:
		body.State, body.ElementID = "resizing", st.ElementID
	}
	writeJSON(w, http.StatusOK, body)
}

// AppendSegment handles POST /projects/{project_id}/segments.
func (h *Handler) AppendSegment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Script              string `json:"script"`
		EnableDigitalHumans bool   `json:"enableDigitalHumans"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	seg := sess.AppendSegment(SegmentDefaults{Script: body.Script, EnableDigitalHumans: body.EnableDigitalHumans})
	h.log.Debug("segment appended", slog.String("project_id", string(sess.ID())), slog.String("segment_id", string(seg.ID)))
	h.applied(w, http.StatusCreated, seg)
}

// ImportScripts handles POST /projects/{project_id}/segments/import.
// Body: { "text": "line one\nline two" }.
func (h *Handler) ImportScripts(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	created := sess.ImportScripts(body.Text)
	h.log.Info("scripts imported", slog.String("project_id", string(sess.ID())), slog.Int("segments", len(created)))
	h.applied(w, http.StatusCreated, created)
}

// RemoveSegments handles POST /projects/{project_id}/segments/delete.
// Body: { "ids": ["...", "..."] }.
func (h *Handler) RemoveSegments(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		IDs []SegmentID `json:"ids"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	removed := sess.RemoveSegments(body.IDs)
	if removed == nil {
		removed = []SegmentID{}
	}
	h.applied(w, http.StatusOK, map[string]any{"removed": removed})
}

// GetSegment handles GET /projects/{project_id}/segments/{segment_id}.
func (h *Handler) GetSegment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	seg, ok := sess.Segment(segmentParam(r))
	if !ok {
		h.fail(w, r, ErrSegmentNotFound)
		return
	}
	writeJSON(w, http.StatusOK, seg)
}

// MoveSegment handles POST .../segments/{segment_id}/move. Body: { "index": 2 }.
func (h *Handler) MoveSegment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Index int `json:"index"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	seg, err := sess.MoveSegment(segmentParam(r), body.Index)
	h.respond(w, r, seg, err)
}

// RenameSegment handles PUT .../segments/{segment_id}/name. Body: { "name": "Intro" }.
func (h *Handler) RenameSegment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	seg, err := sess.RenameSegment(segmentParam(r), body.Name)
	h.respond(w, r, seg, err)
}

// UpdateScript handles PUT .../segments/{segment_id}/script. Body: { "script": "..." }.
func (h *Handler) UpdateScript(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Script string `json:"script"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	seg, err := sess.UpdateScript(segmentParam(r), body.Script)
	h.respond(w, r, seg, err)
}

// AttachMaterial handles PUT .../segments/{segment_id}/material.
// Body: { "materialId": "m1" }. An unknown material detaches.
func (h *Handler) AttachMaterial(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		MaterialID MaterialID `json:"materialId"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	seg, err := sess.AttachMaterial(segmentParam(r), body.MaterialID)
	if err == nil && seg.MaterialWarning != "" {
		h.log.Debug("material warning",
			slog.String("segment_id", string(seg.ID)),
			slog.String("warning", seg.MaterialWarning))
	}
	h.respond(w, r, seg, err)
}

// DetachMaterial handles DELETE .../segments/{segment_id}/material.
func (h *Handler) DetachMaterial(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	seg, err := sess.DetachMaterial(segmentParam(r))
	h.respond(w, r, seg, err)
}

// SetScriptVariants handles PUT .../segments/{segment_id}/variants.
// Body: { "variants": [{ "content": "..." }] }.
func (h *Handler) SetScriptVariants(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Variants []ScriptVariant `json:"variants"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	seg, err := sess.SetScriptVariants(segmentParam(r), body.Variants)
	h.respond(w, r, seg, err)
}

// AddScriptVariant handles POST .../segments/{segment_id}/variants.
// Body: { "content": "..." }.
func (h *Handler) AddScriptVariant(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Content string `json:"content"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	seg, err := sess.AddScriptVariant(segmentParam(r), body.Content)
	h.respond(w, r, seg, err)
}

// RemoveScriptVariant handles DELETE .../segments/{segment_id}/variants/{variant_id}.
func (h *Handler) RemoveScriptVariant(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	seg, err := sess.RemoveScriptVariant(segmentParam(r), chi.URLParam(r, "variant_id"))
	h.respond(w, r, seg, err)
}

// ClearScriptVariants handles DELETE .../segments/{segment_id}/variants.
func (h *Handler) ClearScriptVariants(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	seg, err := sess.ClearScriptVariants(segmentParam(r))
	h.respond(w, r, seg, err)
}

// GetSegmentDigitalHumans handles GET .../segments/{segment_id}/digital-humans.
func (h *Handler) GetSegmentDigitalHumans(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	humans, err := sess.DigitalHumansFor(segmentParam(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if humans == nil {
		humans = []DigitalHuman{}
	}
	writeJSON(w, http.StatusOK, humans)
}

// SetDigitalHumansEnabled handles PUT .../segments/{segment_id}/digital-humans.
// Body: { "enabled": true }.
func (h *Handler) SetDigitalHumansEnabled(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	seg, err := sess.SetDigitalHumansEnabled(segmentParam(r), body.Enabled)
	h.respond(w, r, seg, err)
}

// GetSegmentAudio handles GET .../segments/{segment_id}/audio (resolved).
func (h *Handler) GetSegmentAudio(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	audio, err := sess.EffectiveAudio(segmentParam(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, audio)
}

// UpdateSegmentAudio handles PATCH .../segments/{segment_id}/audio.
func (h *Handler) UpdateSegmentAudio(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var patch AudioSettings
	if !h.decode(w, r, &patch) {
		return
	}
	seg, err := sess.UpdateAudio(segmentParam(r), patch)
	h.respond(w, r, seg, err)
}

// AddBGMTrack handles POST .../segments/{segment_id}/audio/tracks.
func (h *Handler) AddBGMTrack(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var track BGMTrack
	if !h.decode(w, r, &track) {
		return
	}
	seg, err := sess.AddBGMTrack(segmentParam(r), track)
	h.respond(w, r, seg, err)
}

// RemoveBGMTrack handles DELETE .../segments/{segment_id}/audio/tracks/{track_id}.
func (h *Handler) RemoveBGMTrack(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	seg, err := sess.RemoveBGMTrack(segmentParam(r), chi.URLParam(r, "track_id"))
	h.respond(w, r, seg, err)
}

// ListOverlays handles GET .../segments/{segment_id}/overlays.
func (h *Handler) ListOverlays(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	overlays := sess.Overlays(segmentParam(r))
	if overlays == nil {
		overlays = []Overlay{}
	}
	writeJSON(w, http.StatusOK, overlays)
}

type createOverlayBody struct {
	Kind OverlayKind `json:"type"`
	OverlayPatch
}

// CreateOverlay handles POST .../segments/{segment_id}/overlays.
// Body: { "type": "text", "content": "Sale!", "fontSize": 48 }.
func (h *Handler) CreateOverlay(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var body createOverlayBody
	if !h.decode(w, r, &body) {
		return
	}
	o, err := sess.CreateOverlay(body.Kind, segmentParam(r), body.OverlayPatch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.applied(w, http.StatusCreated, o)
}

// UpdateOverlay handles PATCH /projects/{project_id}/overlays/{overlay_id}.
func (h *Handler) UpdateOverlay(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var patch OverlayPatch
	if !h.decode(w, r, &patch) {
		return
	}
	o, err := sess.UpdateOverlay(OverlayID(chi.URLParam(r, "overlay_id")), patch)
	h.respond(w, r, o, err)
}

// RemoveOverlay handles DELETE /projects/{project_id}/overlays/{overlay_id}.
func (h *Handler) RemoveOverlay(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := sess.RemoveOverlay(OverlayID(chi.URLParam(r, "overlay_id"))); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	if h.metrics != nil {
		h.metrics.IncMutations()
	}
}

type rosterBody struct {
	Controller string         `json:"controller"`
	Humans     []DigitalHuman `json:"digitalHumans"`
}

// ListDigitalHumans handles GET /projects/{project_id}/roster.
func (h *Handler) ListDigitalHumans(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	humans := sess.DigitalHumans()
	if humans == nil {
		humans = []DigitalHuman{}
	}
	writeJSON(w, http.StatusOK, rosterBody{Controller: sess.Controller().Name, Humans: humans})
}

// AddDigitalHuman handles POST /projects/{project_id}/roster. Body: { "name": "Anna" }.
// The acting context is read from the X-Studio-Owner header.
func (h *Handler) AddDigitalHuman(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	dh, err := sess.AddDigitalHuman(actor(r), body.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.applied(w, http.StatusCreated, dh)
}

// Handover handles POST /projects/{project_id}/roster/handover. Body: { "to": "Segment 2" }.
func (h *Handler) Handover(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		To string `json:"to"`
	}
	if !h.decode(w, r, &body) {
		return
	}
	if body.To == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := sess.Handover(actor(r), Owner{Name: body.To}); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("roster control handed over", slog.String("project_id", string(sess.ID())), slog.String("controller", body.To))
	h.applied(w, http.StatusOK, sess.Controller())
}

// UpdateDigitalHuman handles PATCH /projects/{project_id}/roster/{human_id}.
func (h *Handler) UpdateDigitalHuman(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var patch DigitalHumanPatch
	if !h.decode(w, r, &patch) {
		return
	}
	dh, err := sess.UpdateDigitalHuman(actor(r), chi.URLParam(r, "human_id"), patch)
	h.respond(w, r, dh, err)
}

// RemoveDigitalHuman handles DELETE /projects/{project_id}/roster/{human_id}.
func (h *Handler) RemoveDigitalHuman(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := sess.RemoveDigitalHuman(actor(r), chi.URLParam(r, "human_id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	if h.metrics != nil {
		h.metrics.IncMutations()
	}
}
