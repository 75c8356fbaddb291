package rpc

import (
	"net/http"

	"github.com/canopy-network/poh/controller"
	"github.com/canopy-network/poh/lib"
	"github.com/canopy-network/poh/lib/crypto"
	"github.com/canopy-network/poh/vote"
	"github.com/julienschmidt/httprouter"
)

// HeightResponse is the position of the node's clock
type HeightResponse struct {
	TickHeight uint64                  `json:"tickHeight"`
	LastId     lib.HexBytes            `json:"lastId"`
	Banking    controller.BankingStats `json:"banking"`
}

// FinalityResponse is the published leader finality plus how stale it is now
type FinalityResponse struct {
	lib.FinalityState
	FinalityMS  uint64 `json:"finalityMS"`  // MaxUint64 until the first confirmation
	StalenessMS uint64 `json:"stalenessMS"` // now - the confirmed tick's timestamp
}

// AccountResponse is an account and, for registered vote accounts, its decoded vote state
type AccountResponse struct {
	Key       lib.HexBytes    `json:"key"`
	Account   *lib.Account    `json:"account"`
	VoteState *vote.VoteState `json:"voteState,omitempty"`
}

// Version responds with the software version
func (s *Server) Version(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.write(w, SoftwareVersion, http.StatusOK)
}

// Height responds with the tick height and last id
func (s *Server) Height(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.write(w, HeightResponse{
		TickHeight: s.controller.Ledger.TickHeight(),
		LastId:     s.controller.Ledger.LastId(),
		Banking:    s.controller.BankingStats(),
	}, http.StatusOK)
}

// Finality responds with the most recent leader finality
func (s *Server) Finality(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	state := s.controller.Ledger.Finality()
	response := FinalityResponse{FinalityState: state, FinalityMS: state.FinalityMS()}
	if now := lib.NowMS(); state.Confirmed && now > state.LastConfirmedTimestampMS {
		response.StalenessMS = now - state.LastConfirmedTimestampMS
	}
	s.write(w, response, http.StatusOK)
}

// Account responds with the account under the hex public key
func (s *Server) Account(w http.ResponseWriter, _ *http.Request, p httprouter.Params) {
	publicKey, e := crypto.NewPublicKeyFromString(p.ByName("key"))
	if e != nil {
		s.write(w, ErrInvalidParams(e), http.StatusBadRequest)
		return
	}
	key := publicKey.Bytes()
	account, err := s.controller.Ledger.GetAccount(key)
	if err != nil {
		s.write(w, err, http.StatusInternalServerError)
		return
	}
	if account == nil {
		s.write(w, ErrNotFound(key), http.StatusNotFound)
		return
	}
	response := AccountResponse{Key: key, Account: account}
	if vote.IsVoteAccount(account) {
		if state, e := vote.NewVoteStateFromBytes(account.Data); e == nil {
			response.VoteState = state
		}
	}
	s.write(w, response, http.StatusOK)
}
