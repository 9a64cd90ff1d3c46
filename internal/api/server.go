package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"cookalong/pkg/interfaces"
	"cookalong/pkg/types"
)

// StatsProvider exposes live connection counts for the health endpoint.
type StatsProvider interface {
	Stats() map[string]int
}

// Server is the REST surface: token issuance, user record CRUD and health.
// It carries no room or seat logic; the realtime engine only meets it at
// the websocket route mounted on the same engine.
type Server struct {
	users      interfaces.UserStore
	issuer     interfaces.TokenIssuer
	tokenTTL   time.Duration
	specialTTL time.Duration
	stats      StatsProvider

	engine *gin.Engine
	log    *logrus.Entry
}

// NewServer wires the REST routes.
func NewServer(users interfaces.UserStore, issuer interfaces.TokenIssuer, tokenTTL, specialTTL time.Duration, stats StatsProvider) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		users:      users,
		issuer:     issuer,
		tokenTTL:   tokenTTL,
		specialTTL: specialTTL,
		stats:      stats,
		engine:     gin.New(),
		log:        logrus.WithField("component", "api"),
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(corsMiddleware())
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.engine.POST("/api/auth", s.authenticate(func() time.Duration { return s.tokenTTL }))
	s.engine.POST("/api/auth/special", s.authenticate(func() time.Duration { return s.specialTTL }))

	s.engine.POST("/api/users", s.createUser)
	s.engine.GET("/api/users", s.listUsers)
	s.engine.GET("/api/users/:id", s.getUser)
	s.engine.PUT("/api/users/:id", s.updateUser)
	s.engine.DELETE("/api/users/:id", s.deleteUser)

	s.engine.GET("/health", s.healthCheck)
}

// RegisterWebSocket mounts the realtime endpoint on the shared engine.
func (s *Server) RegisterWebSocket(path string, handler http.HandlerFunc) {
	s.engine.GET(path, gin.WrapF(handler))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// authenticate checks credentials against the user store and mints a token
// with the given TTL.
func (s *Server) authenticate(ttl func() time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
			return
		}

		user, err := s.users.GetUserByUsername(c.Request.Context(), req.Username)
		if err != nil {
			if errors.Is(err, interfaces.ErrUserNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found", "status": http.StatusUnauthorized})
				return
			}
			s.log.WithError(err).Error("user lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong password", "status": http.StatusUnauthorized})
			return
		}

		token, err := s.issuer.Issue(user.ID, user.Username, ttl())
		if err != nil {
			s.log.WithError(err).Error("token issuance failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":    "authentication successful",
			"token":      token,
			"permission": user.Permission,
			"status":     http.StatusOK,
		})
	}
}

type userRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Permission string `json:"permission" binding:"required"`
}

func (s *Server) createUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, password and permission are required"})
		return
	}

	if !types.IsValidUsername(req.Username) {
		c.JSON(http.StatusBadRequest, gin.H{"error": types.ErrInvalidUsername.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.log.WithError(err).Error("password hashing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	user := &types.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: string(hash),
		Permission:   req.Permission,
		CreatedAt:    time.Now(),
	}

	if err := s.users.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, interfaces.ErrUsernameTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username already taken"})
			return
		}
		s.log.WithError(err).Error("user creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.users.ListUsers(c.Request.Context())
	if err != nil {
		s.log.WithError(err).Error("user listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}

	if users == nil {
		users = []*types.User{}
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) getUser(c *gin.Context) {
	user, err := s.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, interfaces.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		s.log.WithError(err).Error("user lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (s *Server) updateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, password and permission are required"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.log.WithError(err).Error("password hashing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}

	user := &types.User{
		ID:           c.Param("id"),
		Username:     req.Username,
		PasswordHash: string(hash),
		Permission:   req.Permission,
	}

	if err := s.users.UpdateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, interfaces.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		s.log.WithError(err).Error("user update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (s *Server) deleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := s.users.DeleteUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, interfaces.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		s.log.WithError(err).Error("user deletion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted", "id": id})
}

func (s *Server) healthCheck(c *gin.Context) {
	if err := s.users.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}

	resp := gin.H{"status": "healthy"}
	if s.stats != nil {
		resp["connections"] = s.stats.Stats()
	}
	c.JSON(http.StatusOK, resp)
}
