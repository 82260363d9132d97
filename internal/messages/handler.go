package messages

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Srujan253/Gupshup/internal/auth"
	"github.com/Srujan253/Gupshup/internal/httpx"
	"github.com/Srujan253/Gupshup/internal/storage"
	"github.com/Srujan253/Gupshup/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Service struct {
	Store      storage.Store
	Dispatcher *Dispatcher
}

type sendReq struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

func Register(rg *gin.RouterGroup, store storage.Store, d *Dispatcher) {
	s := Service{
		Store:      store,
		Dispatcher: d,
	}
	rg.GET("/messages/users", s.sidebarUsers)
	rg.POST("/messages/send/:id", s.send)
	rg.GET("/messages/:id", s.conversation)
}

func (s Service) send(c *gin.Context) {
	uid := auth.MustUserID(c)
	receiverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpx.Err(c, http.StatusBadRequest, "invalid receiver id")
		return
	}

	var req sendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			httpx.Err(c, http.StatusBadRequest, utils.ValidationErr(validationErrors))
			return
		}
		httpx.Err(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := s.Store.UserByID(receiverID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpx.Err(c, http.StatusNotFound, "user not found")
			return
		}
		httpx.Err(c, http.StatusInternalServerError, "database error")
		return
	}

	msg, err := s.Dispatcher.Send(uid, receiverID, req.Text, req.Image)
	if err != nil {
		if errors.Is(err, ErrInvalidMessage) {
			httpx.Err(c, http.StatusBadRequest, err.Error())
			return
		}
		httpx.Err(c, http.StatusInternalServerError, "failed to store message")
		return
	}

	httpx.OK(c, msg)
}

func (s Service) conversation(c *gin.Context) {
	uid := auth.MustUserID(c)
	otherID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpx.Err(c, http.StatusBadRequest, "invalid user id")
		return
	}

	msgs, err := s.Store.Conversation(uid, otherID)
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "database error")
		return
	}
	if msgs == nil {
		msgs = []storage.Message{}
	}
	httpx.OK(c, msgs)
}

// sidebarUsers lists everyone except the caller, for the contact list.
func (s Service) sidebarUsers(c *gin.Context) {
	uid := auth.MustUserID(c)

	users, err := s.Store.Users(uid)
	if err != nil {
		httpx.Err(c, http.StatusInternalServerError, "database error")
		return
	}
	if users == nil {
		users = []storage.User{}
	}
	httpx.OK(c, users)
}
