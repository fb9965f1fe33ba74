package ws

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"

	"github.com/rashedq/shahid/internal/game"
)

// ConnCtx is the per-connection state carried on the socket.
type ConnCtx struct {
	Code        string
	Name        string
	DesiredRole string
}

// Server is the bidirectional event gateway: it feeds client actions into
// the room registry and implements game.Emitter for everything flowing back.
type Server struct {
	reg *game.Registry

	io *socketio.Server

	mu    sync.RWMutex
	conns map[string]socketio.Conn // socket id -> conn
}

func New() *Server {
	return &Server{conns: make(map[string]socketio.Conn)}
}

// SetRegistry wires the room registry after construction; the registry
// needs the server as its emitter first.
func (srv *Server) SetRegistry(reg *game.Registry) { srv.reg = reg }

// ToRoom implements game.Emitter.
func (srv *Server) ToRoom(code string, event string, payload any) {
	if srv.io == nil {
		return
	}
	srv.io.BroadcastToRoom("/", code, event, payload)
}

// ToConn implements game.Emitter.
func (srv *Server) ToConn(connID string, event string, payload any) {
	srv.mu.RLock()
	c := srv.conns[connID]
	srv.mu.RUnlock()
	if c == nil {
		return
	}
	c.Emit(event, payload)
}

// errMessage maps registry errors onto the user-visible Arabic strings the
// clients display.
func errMessage(err error) string {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		return "الغرفة غير موجودة"
	case errors.Is(err, game.ErrNotInRoom):
		return "لست ضمن هذه الغرفة"
	case errors.Is(err, game.ErrNotHost):
		return "هذا الإجراء متاح للمضيف فقط"
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return "عدد اللاعبين غير كافٍ (الحد الأدنى 3)"
	case errors.Is(err, game.ErrSelfVote):
		return "لا يمكنك التصويت لإجابتك"
	case errors.Is(err, game.ErrInvalidPhase):
		return "لا يمكن تنفيذ هذا الإجراء الآن"
	case errors.Is(err, game.ErrAbilityLocked):
		return "القدرات تُفتح من الجولة الثانية"
	case errors.Is(err, game.ErrAbilityUsed):
		return "استخدمت قدرتك في هذه الجولة"
	case errors.Is(err, game.ErrInvalidAbility):
		return "هذه القدرة غير متاحة لدورك"
	}
	return "حدث خطأ غير متوقع"
}

func (srv *Server) fail(s socketio.Conn, err error) {
	s.Emit("error", errMessage(err))
}

// Mount attaches the Socket.IO server with all game handlers to the given
// Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)
	srv.io = io

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		srv.mu.Lock()
		srv.conns[s.ID()] = s
		srv.mu.Unlock()
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	io.OnEvent("/", "createRoom", func(s socketio.Conn) {
		code := srv.reg.CreateRoom(s.ID())
		ctx := s.Context().(*ConnCtx)
		ctx.Code = code
		s.Join(code)
		s.Emit("roomCreated", code)
	})

	io.OnEvent("/", "joinRoom", func(s socketio.Conn, payload struct {
		RoomCode    string `json:"roomCode"`
		PlayerName  string `json:"playerName"`
		DesiredRole string `json:"desiredRole"`
	}) {
		res, err := srv.reg.JoinRoom(payload.RoomCode, payload.PlayerName, s.ID())
		if err != nil {
			srv.fail(s, err)
			return
		}
		ctx := s.Context().(*ConnCtx)
		ctx.Code = res.RoomCode
		ctx.Name = payload.PlayerName
		ctx.DesiredRole = payload.DesiredRole
		s.Join(res.RoomCode)
		log.Info().Str("sid", s.ID()).Str("code", res.RoomCode).Str("name", payload.PlayerName).Bool("reconnected", res.Reconnected).Msg("joinRoom")
	})

	io.OnEvent("/", "startGame", func(s socketio.Conn) {
		if err := srv.reg.StartGame(s.ID(), false, ""); err != nil {
			srv.fail(s, err)
		}
	})

	io.OnEvent("/", "startTutorial", func(s socketio.Conn, role string) {
		ctx := s.Context().(*ConnCtx)
		if role == "" {
			role = ctx.DesiredRole
		}
		if err := srv.reg.StartGame(s.ID(), true, game.Role(role)); err != nil {
			srv.fail(s, err)
		}
	})

	io.OnEvent("/", "fillBots", func(s socketio.Conn) {
		if err := srv.reg.FillBots(s.ID()); err != nil {
			srv.fail(s, err)
		}
	})

	io.OnEvent("/", "submitAnswer", func(s socketio.Conn, payload struct {
		RoomCode string `json:"roomCode"`
		Answer   string `json:"answer"`
	}) {
		if err := srv.reg.SubmitAnswer(payload.RoomCode, s.ID(), payload.Answer); err != nil {
			srv.fail(s, err)
		}
	})

	io.OnEvent("/", "updateDraft", func(s socketio.Conn, payload struct {
		RoomCode string `json:"roomCode"`
		Draft    string `json:"draft"`
	}) {
		if err := srv.reg.UpdateDraft(payload.RoomCode, s.ID(), payload.Draft); err != nil {
			srv.fail(s, err)
		}
	})

	io.OnEvent("/", "submitVote", func(s socketio.Conn, payload struct {
		RoomCode     string `json:"roomCode"`
		QualityVote  string `json:"qualityVote"`
		IdentityVote string `json:"identityVote"`
	}) {
		if err := srv.reg.SubmitVote(payload.RoomCode, s.ID(), payload.QualityVote, payload.IdentityVote); err != nil {
			srv.fail(s, err)
		}
	})

	io.OnEvent("/", "useAbility", func(s socketio.Conn, payload struct {
		RoomCode    string `json:"roomCode"`
		AbilityType string `json:"abilityType"`
		TargetID    string `json:"targetId"`
	}) {
		if err := srv.reg.UseAbility(payload.RoomCode, s.ID(), game.AbilityType(payload.AbilityType), payload.TargetID); err != nil {
			srv.fail(s, err)
		}
	})

	io.OnEvent("/", "nextRound", func(s socketio.Conn) {
		if err := srv.reg.NextRound(s.ID()); err != nil {
			srv.fail(s, err)
		}
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})

	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		srv.mu.Lock()
		delete(srv.conns, s.ID())
		srv.mu.Unlock()
		srv.reg.Disconnect(s.ID())
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go io.Serve()

	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}
