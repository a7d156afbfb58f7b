package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"kyri56xcaesar/pms-collab/internal/apperr"
	"kyri56xcaesar/pms-collab/internal/mchat"
	"kyri56xcaesar/pms-collab/internal/mtask"
)

func (a *App) listTasksHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": a.Tasks.List()})
}

func (a *App) myTasksHandler(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": a.Tasks.TasksForUser(id)})
}

func (a *App) createTaskHandler(c *gin.Context) {
	creator, ok := caller(c)
	if !ok {
		return
	}
	var req mtask.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := a.Tasks.Create(req, creator)
	if err != nil {
		respondErr(c, err)
		return
	}
	log.Printf("task %s created by %s, assigned to %d", t.ID, creator, len(t.AssignedTo))
	c.JSON(http.StatusCreated, t)
}

func (a *App) getTaskHandler(c *gin.Context) {
	id := c.Param("taskid")
	t, found := a.Tasks.Get(id)
	if !found {
		respondErr(c, apperr.NotFound("task", id))
		return
	}
	c.JSON(http.StatusOK, t)
}

func (a *App) updateTaskHandler(c *gin.Context) {
	var req mtask.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := a.Tasks.Update(c.Param("taskid"), req); err != nil {
		respondErr(c, err)
		return
	}
	a.getTaskHandler(c)
}

func (a *App) deleteTaskHandler(c *gin.Context) {
	if err := a.Tasks.Delete(c.Param("taskid")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *App) setStatusHandler(c *gin.Context) {
	var req mtask.StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := a.Tasks.SetStatus(c.Param("taskid"), req.Status); err != nil {
		respondErr(c, err)
		return
	}
	a.getTaskHandler(c)
}

func (a *App) setStepStatusHandler(c *gin.Context) {
	var req mtask.StepStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := a.Tasks.SetStepStatus(c.Param("taskid"), c.Param("stepid"), req.Status); err != nil {
		respondErr(c, err)
		return
	}
	a.getTaskHandler(c)
}

// chat

type sessionView struct {
	ID        string          `json:"id"`
	TaskID    string          `json:"taskId"`
	TaskTitle string          `json:"taskTitle"`
	Messages  []mchat.Message `json:"messages"`
}

func viewOf(s *mchat.Session) sessionView {
	return sessionView{
		ID:        s.ID,
		TaskID:    s.TaskID,
		TaskTitle: s.TaskTitle,
		Messages:  s.Messages(),
	}
}

func (a *App) openChatHandler(c *gin.Context) {
	id := c.Param("taskid")
	t, found := a.Tasks.Get(id)
	if !found {
		respondErr(c, apperr.NotFound("task", id))
		return
	}
	c.JSON(http.StatusCreated, viewOf(a.Chats.Open(t)))
}

func (a *App) getChatHandler(c *gin.Context) {
	id := c.Param("sessionid")
	s, found := a.Chats.Get(id)
	if !found {
		respondErr(c, apperr.NotFound("session", id))
		return
	}
	c.JSON(http.StatusOK, viewOf(s))
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (a *App) sendMessageHandler(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	var req sendMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	id := c.Param("sessionid")
	s, found := a.Chats.Get(id)
	if !found {
		respondErr(c, apperr.NotFound("session", id))
		return
	}
	m, err := s.Send(userID, req.Content)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (a *App) closeChatHandler(c *gin.Context) {
	if err := a.Chats.Close(c.Param("sessionid")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
