package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/solbet-poc/internal/bet-service/dto"
	"github.com/radieske/solbet-poc/internal/bet-service/odds"
	"github.com/radieske/solbet-poc/internal/bet-service/session"
	"github.com/radieske/solbet-poc/internal/bet-service/wallet"
	"github.com/radieske/solbet-poc/internal/betting/ledger"
	"github.com/radieske/solbet-poc/internal/betting/model"
	"github.com/radieske/solbet-poc/internal/betting/settlement"
	"github.com/radieske/solbet-poc/internal/betting/tracker"
)

// WalletConnector resolve a identidade do owner a partir da chave pública
type WalletConnector interface {
	Connect(ctx context.Context, publicKey string) (wallet.Identity, error)
}

// Server expõe sessão, mercados, bilhete e histórico para o navegador
type Server struct {
	Log      *zap.Logger
	Sessions *session.Registry
	Ledger   *ledger.Ledger
	Tracker  *tracker.Tracker
	Engine   *settlement.Engine
	Feed     *odds.Feed
	Wallet   WalletConnector
	WS       http.HandlerFunc // opcional

	CORSOrigins []string
}

// Router retorna o roteador chi com CORS e as rotas v1
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/sports", s.listSports)
		r.Get("/markets", s.listMarkets) // ?filter=live

		r.Post("/sessions", s.openSession)
		r.Route("/sessions/{owner}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.closeSession)

			r.Get("/slip", s.getSlip)
			r.Post("/slip/selections", s.toggleSelection)
			r.Put("/slip/selections/{id}", s.setAmount)
			r.Delete("/slip/selections/{id}", s.removeSelection)
			r.Post("/slip/settle", s.settle)

			r.Get("/bets", s.listBets)
		})
	})

	if s.WS != nil {
		r.Get("/ws", s.WS)
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

func (s *Server) listSports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Feed.Sports(r.Context()))
}

func (s *Server) listMarkets(w http.ResponseWriter, r *http.Request) {
	live := r.URL.Query().Get("filter") == "live"
	writeJSON(w, http.StatusOK, s.Feed.Markets(r.Context(), live))
}

// openSession conecta a carteira, inicializa o saldo e carrega o histórico
func (s *Server) openSession(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	id, err := s.Wallet.Connect(r.Context(), req.PublicKey)
	if err != nil {
		s.Log.Error("wallet connect failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "wallet connect failed")
		return
	}

	balance := s.Ledger.GetOrInit(r.Context(), id.Owner)
	bets := s.Tracker.LoadForOwner(r.Context(), id.Owner)
	s.Sessions.Open(id, bets)

	s.Log.Info("session opened", zap.String("owner", id.Owner), zap.Bool("demo", id.Demo), zap.Int("bets", len(bets)))
	writeJSON(w, http.StatusCreated, dto.NewSessionResponse(id, balance, s.Ledger.Degraded()))
}

// session busca a sessão do {owner}; escreve 404 se não houver
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	owner := chi.URLParam(r, "owner")
	sess, ok := s.Sessions.Get(owner)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
	}
	return sess, ok
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	balance := s.Ledger.Current(r.Context(), sess.Owner)
	writeJSON(w, http.StatusOK, dto.NewSessionResponse(sess.Identity, balance, s.Ledger.Degraded()))
}

// closeSession desconecta: descarta bilhete, histórico e saldo local
func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	if !s.Sessions.Close(owner) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.Ledger.Forget(owner)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) slipView(ctx context.Context, sess *session.Session) dto.SlipResponse {
	return dto.NewSlipResponse(sess.Slip.Snapshot(), s.Ledger.Current(ctx, sess.Owner))
}

func (s *Server) getSlip(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.slipView(r.Context(), sess))
}

func (s *Server) toggleSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req dto.ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	o := model.Outcome(req.Type)
	if req.MatchID == "" || !o.Valid() {
		writeError(w, http.StatusBadRequest, "matchId and type (home|draw|away) are required")
		return
	}

	sel, err := s.Feed.Selection(r.Context(), req.MatchID, o)
	switch {
	case errors.Is(err, odds.ErrUnknownMatch):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, odds.ErrOutcomeMissing):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	selected := sess.Slip.Toggle(sel)
	writeJSON(w, http.StatusOK, dto.ToggleResponse{Selected: selected, Slip: s.slipView(r.Context(), sess)})
}

func (s *Server) setAmount(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req dto.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if !sess.Slip.SetAmount(chi.URLParam(r, "id"), req.Amount) {
		writeError(w, http.StatusNotFound, "selection not in slip")
		return
	}
	writeJSON(w, http.StatusOK, s.slipView(r.Context(), sess))
}

func (s *Server) removeSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if !sess.Slip.Remove(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "selection not in slip")
		return
	}
	writeJSON(w, http.StatusOK, s.slipView(r.Context(), sess))
}

// settle efetiva o bilhete: 422 para validação, 409 se já houver liquidação em curso
func (s *Server) settle(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	res, err := s.Engine.Settle(r.Context(), sess.Owner, sess.Slip, sess.History)
	if err != nil {
		var ve *settlement.ValidationError
		if errors.As(err, &ve) {
			status := http.StatusUnprocessableEntity
			if errors.Is(err, settlement.ErrSettlementInProgress) {
				status = http.StatusConflict
			}
			writeJSON(w, status, dto.ErrorResponse{Error: ve.Msg, Reason: ve.Reason})
			return
		}
		s.Log.Error("settle failed", zap.String("owner", sess.Owner), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "settle failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.SettleResponse{
		Bets:         res.Bets,
		TotalStake:   res.TotalStake,
		PotentialWin: res.PotentialWin,
		Balance:      res.Balance,
		Persisted:    res.Persisted,
		Message:      placedMessage(len(res.Bets), res.TotalStake),
	})
}

func placedMessage(n int, stake decimal.Decimal) string {
	if n == 1 {
		return fmt.Sprintf("1 bet placed for %s tokens", stake.StringFixed(2))
	}
	return fmt.Sprintf("%d bets placed for %s tokens", n, stake.StringFixed(2))
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	pending, settled := tracker.Partition(sess.History.All())
	writeJSON(w, http.StatusOK, dto.BetsResponse{Pending: pending, Settled: settled})
}
