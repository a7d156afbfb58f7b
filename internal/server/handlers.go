package server

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kyri56xcaesar/pms-collab/internal/apperr"
	auth "kyri56xcaesar/pms-collab/internal/authmw"
	"kyri56xcaesar/pms-collab/internal/mgroup"
	"kyri56xcaesar/pms-collab/internal/muser"
)

// respondErr maps registry errors onto status codes. Anything unexpected is a 500.
func respondErr(c *gin.Context, err error) {
	var verr *apperr.ValidationError
	var nerr *apperr.NotFoundError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.As(err, &nerr):
		c.JSON(http.StatusNotFound, gin.H{"error": nerr.Error()})
	default:
		log.Printf("unexpected error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// caller returns the acting user id, answering 401 when there is none.
func caller(c *gin.Context) (string, bool) {
	id, ok := auth.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no acting user"})
		return "", false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		log.Printf("failed to bind input: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return false
	}
	return true
}

// users

func (a *App) meHandler(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	if cur := a.Users.Current(); cur != nil && cur.ID == id {
		c.JSON(http.StatusOK, cur)
		return
	}
	u, found := a.Users.Lookup(id)
	if !found {
		// token identities need not be on the roster
		u = muser.User{ID: id, Name: id}
	}
	c.JSON(http.StatusOK, u)
}

type setCurrentRequest struct {
	UserID string `json:"userId"`
}

// setCurrentHandler selects the user that anonymous requests act as. An empty
// id clears the selection.
func (a *App) setCurrentHandler(c *gin.Context) {
	var req setCurrentRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.UserID == "" {
		a.Users.SetCurrent(nil)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	u, found := a.Users.Lookup(req.UserID)
	if !found {
		respondErr(c, apperr.NotFound("user", req.UserID))
		return
	}
	a.Users.SetCurrent(&u)
	c.JSON(http.StatusOK, u)
}

func (a *App) listUsersHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": a.Users.Users()})
}

func (a *App) registerUserHandler(c *gin.Context) {
	var u muser.User
	if !bindJSON(c, &u) {
		return
	}
	u.ID = strings.TrimSpace(u.ID)
	if u.ID == "" {
		respondErr(c, apperr.Invalid("id", "is required"))
		return
	}
	a.Users.Register(u)
	c.JSON(http.StatusCreated, u)
}

func (a *App) updateUserHandler(c *gin.Context) {
	var req muser.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	id := c.Param("userid")
	if err := a.Users.Update(id, req); err != nil {
		respondErr(c, err)
		return
	}
	u, _ := a.Users.Lookup(id)
	c.JSON(http.StatusOK, u)
}

// groups

func (a *App) listGroupsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": a.Groups.List()})
}

func (a *App) myGroupsHandler(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": a.Groups.GroupsForUser(id)})
}

func (a *App) createGroupHandler(c *gin.Context) {
	creator, ok := caller(c)
	if !ok {
		return
	}
	var req mgroup.CreateGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	g, err := a.Groups.Create(req, creator)
	if err != nil {
		respondErr(c, err)
		return
	}
	log.Printf("group %s created by %s", g.ID, creator)
	c.JSON(http.StatusCreated, g)
}

func (a *App) getGroupHandler(c *gin.Context) {
	id := c.Param("groupid")
	g, found := a.Groups.Get(id)
	if !found {
		respondErr(c, apperr.NotFound("group", id))
		return
	}
	c.JSON(http.StatusOK, g)
}

func (a *App) updateGroupHandler(c *gin.Context) {
	var req mgroup.UpdateGroupRequest
	if !bindJSON(c, &req) {
		return
	}
	id := c.Param("groupid")
	if err := a.Groups.Update(id, req); err != nil {
		respondErr(c, err)
		return
	}
	a.getGroupHandler(c)
}

func (a *App) deleteGroupHandler(c *gin.Context) {
	if err := a.Groups.Delete(c.Param("groupid")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *App) addMemberHandler(c *gin.Context) {
	var spec mgroup.MemberSpec
	if !bindJSON(c, &spec) {
		return
	}
	if err := a.Groups.AddMember(c.Param("groupid"), spec); err != nil {
		respondErr(c, err)
		return
	}
	a.getGroupHandler(c)
}

func (a *App) removeMemberHandler(c *gin.Context) {
	if err := a.Groups.RemoveMember(c.Param("groupid"), c.Param("userid")); err != nil {
		respondErr(c, err)
		return
	}
	a.getGroupHandler(c)
}

func (a *App) setRoleHandler(c *gin.Context) {
	var req mgroup.SetRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := a.Groups.SetMemberRole(c.Param("groupid"), c.Param("userid"), req.Role); err != nil {
		respondErr(c, err)
		return
	}
	a.getGroupHandler(c)
}

// groupTasksHandler lists tasks linked to the group. A deleted or unknown group
// has none.
func (a *App) groupTasksHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": a.Tasks.TasksForGroup(c.Param("groupid"))})
}
