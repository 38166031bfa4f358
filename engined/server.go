package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"github.com/mdlayher/vsock"

	"github.com/cloudx-io/sealedbid/auctionapi"
	"github.com/cloudx-io/sealedbid/core"
	"github.com/cloudx-io/sealedbid/substrate"
)

// EngineServer exposes one auction instance over a length-delimited JSON
// request/response protocol. Connections are handled by a bounded worker
// pool; the auction itself is serialized so every operation runs to
// completion before the next begins.
type EngineServer struct {
	cfg       serverConfig
	auction   *core.Auction
	substrate *substrate.Simulated

	// ops serializes auction operations across connections.
	ops chan struct{}
}

func NewEngineServer(cfg serverConfig, auction *core.Auction, sub *substrate.Simulated) *EngineServer {
	return &EngineServer{
		cfg:       cfg,
		auction:   auction,
		substrate: sub,
		ops:       make(chan struct{}, 1),
	}
}

func (s *EngineServer) listen() (net.Listener, error) {
	if s.cfg.transport == "vsock" {
		return vsock.Listen(s.cfg.port, nil)
	}
	return net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.port))
}

func (s *EngineServer) Start() error {
	listener, err := s.listen()
	if err != nil {
		return fmt.Errorf("failed to create %s listener: %w", s.cfg.transport, err)
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Printf("ERROR: Failed to close listener: %v", err)
		}
	}()

	log.Printf("INFO: auction engine listening on %s port %d", s.cfg.transport, s.cfg.port)

	semaphore := make(chan struct{}, s.cfg.maxWorkers)
	log.Printf("INFO: Worker pool initialized with %d max concurrent workers", s.cfg.maxWorkers)

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("ERROR: Failed to accept connection: %v", err)
			continue
		}

		// Acquire worker slot - immediate rejection if pool full
		select {
		case semaphore <- struct{}{}:
			go func(c net.Conn) {
				defer func() { <-semaphore }() // Release worker slot
				s.handleConnection(c)
			}(conn)
		default:
			log.Printf("INFO: No workers available, rejecting connection (pool full)")
			if err := conn.Close(); err != nil {
				log.Printf("ERROR: Failed to close rejected connection: %v", err)
			}
		}
	}
}

func (s *EngineServer) handleConnection(conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: Panic recovered in handleConnection: %v", r)
		}
		if err := conn.Close(); err != nil {
			log.Printf("ERROR: Failed to close connection: %v", err)
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, conn); err != nil {
		log.Printf("ERROR: Failed to read request: %v", err)
		return
	}

	var baseReq auctionapi.Request
	if err := json.Unmarshal(buf.Bytes(), &baseReq); err != nil {
		log.Printf("ERROR: Failed to decode base request: %v", err)
		return
	}

	log.Printf("INFO: Received request type: %s (caller=%s)", baseReq.Type, baseReq.Caller)

	// One auction operation at a time.
	s.ops <- struct{}{}
	response := s.dispatch(baseReq, buf.Bytes())
	<-s.ops

	encoder := json.NewEncoder(conn)
	if err := encoder.Encode(response); err != nil {
		log.Printf("ERROR: Failed to encode response: %v", err)
	}
}

func (s *EngineServer) dispatch(base auctionapi.Request, body []byte) auctionapi.Response {
	switch base.Type {
	case "ping":
		return ok("pong", "auction engine is healthy")

	case "status":
		resp := ok("status", "")
		resp.Phase = s.auction.Phase().String()
		if winner, err := s.auction.Winner(); err == nil {
			resp.Winner = winner.Winner
			if winner.Revealed {
				resp.Amount = auctionapi.FormatAmount(winner.RevealedAmount)
			}
		}
		return resp

	case "start_auction":
		var req auctionapi.StartRequest
		if resp, failed := decode(body, &req); failed {
			return resp
		}
		if err := s.auction.Start(req.Caller, time.Duration(req.DurationSeconds)*time.Second); err != nil {
			return fail("start_response", err)
		}
		return ok("start_response", "bidding open")

	case "submit_bid":
		return s.handleSubmit(body, false)

	case "increase_bid":
		return s.handleSubmit(body, true)

	case "get_bid":
		var req auctionapi.GetBidRequest
		if resp, failed := decode(body, &req); failed {
			return resp
		}
		handle, err := s.auction.GetBid(req.Caller, req.Bidder)
		if err != nil {
			return fail("get_bid_response", err)
		}
		resp := ok("get_bid_response", "decryption access granted")
		resp.Handle = string(handle)
		return resp

	case "end_bidding":
		winner, err := s.auction.EndBidding()
		if err != nil {
			return fail("end_bidding_response", err)
		}
		resp := ok("end_bidding_response", "winner determined, amount still sealed")
		resp.Winner = winner
		return resp

	case "cancel":
		if err := s.auction.Cancel(base.Caller); err != nil {
			return fail("cancel_response", err)
		}
		return ok("cancel_response", "auction cancelled")

	case "request_reveal":
		correlationID, err := s.auction.RequestWinningAmountDecryption(base.Caller)
		if err != nil {
			return fail("request_reveal_response", err)
		}
		resp := ok("request_reveal_response", "decryption requested")
		resp.CorrelationID = correlationID
		return resp

	case "fulfill_decryption":
		// Local-deployment path: the simulated substrate lives in-process,
		// so the operator drives its out-of-band fulfillment through the
		// server and receives the plaintext with its decryption certificate.
		if base.Caller != s.auction.Operator() {
			return fail("fulfill_response", core.ErrUnauthorized)
		}
		pending, err := s.auction.PendingDecryption()
		if err != nil {
			return fail("fulfill_response", err)
		}
		amount, cert, err := s.substrate.Fulfill(pending.PendingID, pending.CorrelationID)
		if err != nil {
			return fail("fulfill_response", err)
		}
		resp := ok("fulfill_response", "decryption fulfilled")
		resp.Amount = auctionapi.FormatAmount(amount)
		resp.CorrelationID = pending.CorrelationID
		resp.CertificateCBORBase64 = base64.StdEncoding.EncodeToString(cert)
		return resp

	case "reveal":
		var req auctionapi.RevealRequest
		if resp, failed := decode(body, &req); failed {
			return resp
		}
		amount, err := auctionapi.ParseAmount(req.Amount)
		if err != nil {
			return fail("reveal_response", err)
		}
		var cert []byte
		if req.CertificateCBORBase64 != "" {
			cert, err = base64.StdEncoding.DecodeString(req.CertificateCBORBase64)
			if err != nil {
				return fail("reveal_response", fmt.Errorf("decode certificate: %w", err))
			}
		}
		if err := s.auction.RevealWinningAmount(req.Caller, amount, req.CorrelationID, cert); err != nil {
			return fail("reveal_response", err)
		}
		return ok("reveal_response", "winning amount revealed")

	case "withdraw_deposit":
		if err := s.auction.WithdrawDeposit(base.Caller); err != nil {
			return fail("withdraw_response", err)
		}
		return ok("withdraw_response", "deposit refunded")

	case "withdraw_winnings":
		if err := s.auction.WithdrawWinnings(base.Caller); err != nil {
			return fail("withdraw_response", err)
		}
		return ok("withdraw_response", "winnings transferred to operator")

	case "emergency_refund":
		refunded, err := s.auction.EmergencyRefundAll(base.Caller)
		if err != nil {
			return fail("emergency_refund_response", err)
		}
		resp := ok("emergency_refund_response", "auction cancelled, deposits refunded")
		resp.Refunded = refunded
		return resp

	default:
		return fail("error", fmt.Errorf("unknown request type: %s", base.Type))
	}
}

func (s *EngineServer) handleSubmit(body []byte, increase bool) auctionapi.Response {
	var req auctionapi.SubmitBidRequest
	if resp, failed := decode(body, &req); failed {
		return resp
	}
	deposit, err := auctionapi.ParseAmount(req.Deposit)
	if err != nil {
		return fail("bid_response", err)
	}

	if increase {
		err = s.auction.IncreaseBid(req.Bidder, core.Handle(req.EncryptedAmount), deposit)
	} else {
		err = s.auction.SubmitBid(req.Bidder, core.Handle(req.EncryptedAmount), deposit)
	}
	if err != nil {
		return fail("bid_response", err)
	}
	return ok("bid_response", "bid recorded")
}

func decode[T any](body []byte, req *T) (auctionapi.Response, bool) {
	if err := json.Unmarshal(body, req); err != nil {
		log.Printf("ERROR: Failed to decode request: %v", err)
		return fail("error", fmt.Errorf("failed to decode request: %w", err)), true
	}
	return auctionapi.Response{}, false
}

func ok(typ, message string) auctionapi.Response {
	return auctionapi.Response{Type: typ, Success: true, Message: message}
}

func fail(typ string, err error) auctionapi.Response {
	return auctionapi.Response{Type: typ, Success: false, Message: err.Error()}
}
