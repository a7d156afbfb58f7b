// Package server exposes the users, groups, tasks and chat registries over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	auth "kyri56xcaesar/pms-collab/internal/authmw"
	"kyri56xcaesar/pms-collab/internal/mchat"
	"kyri56xcaesar/pms-collab/internal/mgroup"
	"kyri56xcaesar/pms-collab/internal/mtask"
	"kyri56xcaesar/pms-collab/internal/muser"
)

const (
	apiVersion = "/api/v1"
)

// App holds the state shared by every handler.
type App struct {
	Users  *muser.Provider
	Groups *mgroup.Registry
	Tasks  *mtask.Registry
	Chats  *mchat.Manager

	// nil unless a Keycloak realm is configured
	Resolver *auth.TokenResolver

	ChatRate  rate.Limit
	ChatBurst int
}

// NewApp wires empty registries around p. The task registry sees group
// membership through the group registry.
func NewApp(p *muser.Provider) *App {
	groups := mgroup.NewRegistry()
	return &App{
		Users:     p,
		Groups:    groups,
		Tasks:     mtask.NewRegistry(groups),
		Chats:     mchat.NewManager(),
		ChatRate:  rate.Limit(5),
		ChatBurst: 10,
	}
}

func setCors(engine *gin.Engine, config Config) {
	corsconfig := cors.DefaultConfig()
	corsconfig.AllowOrigins = config.AllowedOrigins
	corsconfig.AllowMethods = config.AllowedMethods
	corsconfig.AllowHeaders = config.AllowedHeaders
	engine.Use(cors.New(corsconfig))
}

func mustInitKcAuth(config Config) *auth.TokenResolver {
	issuer := fmt.Sprintf("http://%s/realms/%s", config.AuthAddress, config.Realm)
	jwksURL := fmt.Sprintf("http://%s/realms/%s/protocol/openid-connect/certs", config.AuthAddress, config.Realm)

	r, err := auth.NewTokenResolver(jwksURL, issuer, config.Audience, config.ClientID)
	if err != nil {
		log.Fatalf("failed to init keycloak jwks: %v", err)
	}
	return r
}

// currentUserID backs the identity fallback when a request names nobody.
func (a *App) currentUserID() string {
	if u := a.Users.Current(); u != nil {
		return u.ID
	}
	return ""
}

func (a *App) setRoutes(engine *gin.Engine) {
	root := engine.Group("/")
	{
		root.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "alive"})
		})
	}

	api := root.Group(apiVersion)
	api.Use(auth.Identity(a.Resolver, a.currentUserID))
	{
		api.GET("/me", a.meHandler)
		api.PUT("/me/current", a.setCurrentHandler)
		api.GET("/users", a.listUsersHandler)
		api.POST("/users", a.registerUserHandler)
		api.PATCH("/users/:userid", a.updateUserHandler)

		api.GET("/groups", a.listGroupsHandler)
		api.POST("/groups", a.createGroupHandler)
		api.GET("/groups/:groupid", a.getGroupHandler)
		api.PATCH("/groups/:groupid", a.updateGroupHandler)
		api.DELETE("/groups/:groupid", a.deleteGroupHandler)
		api.POST("/groups/:groupid/members", a.addMemberHandler)
		api.DELETE("/groups/:groupid/members/:userid", a.removeMemberHandler)
		api.PUT("/groups/:groupid/members/:userid/role", a.setRoleHandler)
		api.GET("/groups/:groupid/tasks", a.groupTasksHandler)
		api.GET("/my-groups", a.myGroupsHandler)

		api.GET("/tasks", a.listTasksHandler)
		api.POST("/tasks", a.createTaskHandler)
		api.GET("/tasks/:taskid", a.getTaskHandler)
		api.PUT("/tasks/:taskid", a.updateTaskHandler)
		api.DELETE("/tasks/:taskid", a.deleteTaskHandler)
		api.PATCH("/tasks/:taskid/status", a.setStatusHandler)
		api.PATCH("/tasks/:taskid/steps/:stepid", a.setStepStatusHandler)
		api.GET("/my-tasks", a.myTasksHandler)

		api.POST("/tasks/:taskid/chat", a.openChatHandler)
		api.GET("/chat/:sessionid", a.getChatHandler)
		api.POST("/chat/:sessionid/messages", chatLimiter(a.ChatRate, a.ChatBurst), a.sendMessageHandler)
		api.DELETE("/chat/:sessionid", a.closeChatHandler)
	}
}

// NewEngine builds the router for a. Gin mode must be set before calling.
func NewEngine(a *App, config Config) *gin.Engine {
	engine := gin.Default()
	setCors(engine, config)
	a.setRoutes(engine)
	return engine
}

func InitAndServe(confPath string) {
	config := loadConfig(confPath)
	setGinMode(config.ApiGinMode)

	p := muser.NewProvider(muser.WithDefaultUser())
	if config.RosterPath != "" {
		roster, err := muser.LoadRoster(config.RosterPath)
		if err != nil {
			log.Fatalf("failed to load roster: %v", err)
		}
		if err := muser.Seed(p, roster); err != nil {
			log.Fatalf("failed to seed roster: %v", err)
		}
		log.Printf("roster: %d users loaded from %s", len(roster.Users), config.RosterPath)
	}

	app := NewApp(p)
	app.ChatRate = rate.Limit(config.ChatRate)
	app.ChatBurst = config.ChatBurst

	if config.keycloakEnabled() {
		app.Resolver = mustInitKcAuth(config)
		defer app.Resolver.Close()

		if config.RosterSync {
			rs := auth.NewRosterSync(config.AuthAddress, config.Realm, config.ClientID, config.ClientSecret)
			if _, err := rs.Sync(context.Background(), p, 200); err != nil {
				log.Printf("roster sync failed, continuing with local roster: %v", err)
			}
		}
	}

	engine := NewEngine(app, config)

	// serve http
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", config.Ip, config.Port),
		Handler:           engine,
		ReadHeaderTimeout: time.Second * 5,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	<-ctx.Done()

	stop()
	log.Println("shutting down gracefully, press Ctrl+C again to force")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}

func setGinMode(mode string) {
	switch strings.ToLower(mode) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "envgin":
		gin.SetMode(gin.EnvGinMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
}
