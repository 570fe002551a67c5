package companion

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/MKhiriev/go-consent-sdk/internal/crypto"
	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/internal/utils"
	"github.com/MKhiriev/go-consent-sdk/models"
	"github.com/go-chi/chi/v5"
)

const sdkVersionHeader = "X-SDK-Version"

type answerFunc func(r *http.Request, g *grant, q models.Query) (any, error)

// serve runs the session-scoped pipeline shared by every data endpoint.
func (c *Companion) serve(answer answerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		if c.shouldDrop() {
			hangUp(w)
			return
		}
		if slices.Contains(c.cfg.RejectedSDKVersions, r.Header.Get(sdkVersionHeader)) {
			c.writeError(w, log, fmt.Errorf("%w: %s", ErrSDKVersion, r.Header.Get(sdkVersionHeader)))
			return
		}

		var req models.FetchRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			c.writeError(w, log, fmt.Errorf("%w: %v", ErrInvalidPayload, err))
			return
		}
		if err := c.validator.Validate(r.Context(), req); err != nil {
			c.writeError(w, log, fmt.Errorf("%w: %v", ErrInvalidPayload, err))
			return
		}
		g, err := c.lookup(req.SessionKey)
		if err != nil {
			c.writeError(w, log, err)
			return
		}

		env, err := crypto.DecodeEnvelope(req.EncryptedPayload, req.Signature)
		if err != nil {
			c.writeError(w, log, fmt.Errorf("%w: %v", ErrInvalidPayload, err))
			return
		}
		plain, err := c.crypto.Decrypt(r.Context(), env, g.key, g.clientSigner)
		if err != nil {
			c.writeError(w, log, fmt.Errorf("%w: %v", ErrInvalidPayload, err))
			return
		}
		var q models.Query
		err = json.Unmarshal(plain, &q)
		crypto.Zero(plain)
		if err != nil {
			c.writeError(w, log, fmt.Errorf("%w: %v", ErrInvalidPayload, err))
			return
		}

		result, err := answer(r, g, q)
		if err != nil {
			c.writeError(w, log, err)
			return
		}
		raw, err := json.Marshal(result)
		if err != nil {
			c.writeError(w, log, err)
			return
		}
		out, err := c.crypto.Encrypt(r.Context(), raw, g.key)
		if err != nil {
			c.writeError(w, log, err)
			return
		}
		ct, sig := crypto.EncodeEnvelope(out)
		_, _ = utils.WriteJSON(w, models.FetchResponse{EncryptedPayload: ct, Signature: sig}, http.StatusOK)
	}
}

func (c *Companion) lookup(sessionID string) (*grant, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if !c.now().Before(g.expiresAt) {
		return nil, fmt.Errorf("%w: %s", ErrSessionExpired, sessionID)
	}
	return g, nil
}

func (c *Companion) query(_ *http.Request, g *grant, q models.Query) (any, error) {
	if !inScope(q, g.scope) {
		return nil, fmt.Errorf("%w: %v", ErrScopeOutOfBounds, q.Parameters["serviceId"])
	}
	return c.respond(q, g.scope)
}

func (c *Companion) accounts(*http.Request, *grant, models.Query) (any, error) {
	return c.cfg.Accounts, nil
}

func (c *Companion) files(*http.Request, *grant, models.Query) (any, error) {
	list := models.FileList{Files: make([]models.FileInfo, 0, len(c.cfg.Files))}
	for id := range c.cfg.Files {
		list.Files = append(list.Files, models.FileInfo{ID: id})
	}
	slices.SortFunc(list.Files, func(a, b models.FileInfo) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return list, nil
}

func (c *Companion) file(r *http.Request, _ *grant, _ models.Query) (any, error) {
	id := chi.URLParam(r, "fileID")
	content, ok := c.cfg.Files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}
	return content, nil
}

// inScope rejects queries naming a service the user did not grant. A scope
// without service types grants every service of the contract.
func inScope(q models.Query, scope models.Scope) bool {
	raw, ok := q.Parameters["serviceId"]
	if !ok || len(scope.ServiceTypes) == 0 {
		return true
	}
	id, ok := raw.(float64)
	if !ok {
		return false
	}
	return slices.ContainsFunc(scope.ServiceTypes, func(st models.ServiceType) bool {
		return float64(st.ID) == id
	})
}

func hangUp(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic(errors.New("connection hijacking is not supported"))
	}
	if conn, _, err := hj.Hijack(); err == nil {
		_ = conn.Close()
	}
}
