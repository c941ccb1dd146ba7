package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/switchboard/internal/channel"
	"github.com/zulandar/switchboard/internal/dispatch"
	"github.com/zulandar/switchboard/internal/models"
	"github.com/zulandar/switchboard/internal/router"
)

// SubmitRequest is one message submission accepted over HTTP. An empty
// AgentID broadcasts to every registered agent.
type SubmitRequest struct {
	AgentID        string   `json:"agent_id,omitempty"`
	Body           string   `json:"body"`
	Sender         string   `json:"sender,omitempty"`
	Priority       string   `json:"priority,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	UrgentOverride bool     `json:"urgent_override,omitempty"`
}

// SubmitResponse carries the per-recipient terminal outcomes.
type SubmitResponse struct {
	Results []ResultJSON `json:"results"`
}

// ResultJSON is the wire form of a router.Result.
type ResultJSON struct {
	MessageID string `json:"message_id"`
	AgentID   string `json:"agent_id"`
	State     string `json:"state"`
	Channel   string `json:"channel,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

func toResultJSON(r router.Result) ResultJSON {
	return ResultJSON{
		MessageID: r.MessageID,
		AgentID:   r.AgentID,
		State:     string(r.State),
		Channel:   r.Channel,
		Reason:    string(r.Reason),
		Detail:    r.Detail,
	}
}

func fromResultJSON(r ResultJSON) router.Result {
	return router.Result{
		MessageID: r.MessageID,
		AgentID:   r.AgentID,
		State:     models.MessageState(r.State),
		Channel:   r.Channel,
		Reason:    channel.Reason(r.Reason),
		Detail:    r.Detail,
	}
}

// handleSubmit routes a submission through the daemon's long-lived pipeline,
// so the dedup window and agent health span client invocations.
func handleSubmit(svc *dispatch.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		opts := dispatch.SendOpts{
			Sender:         req.Sender,
			Priority:       models.ParsePriority(req.Priority),
			Tags:           req.Tags,
			UrgentOverride: req.UrgentOverride,
		}

		var (
			results []router.Result
			err     error
		)
		if req.AgentID == "" {
			results, err = svc.Broadcast(c.Request.Context(), req.Body, opts)
		} else {
			var res router.Result
			res, err = svc.Send(c.Request.Context(), req.AgentID, req.Body, opts)
			results = []router.Result{res}
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		out := make([]ResultJSON, len(results))
		for i, r := range results {
			out[i] = toResultJSON(r)
		}
		c.JSON(http.StatusOK, SubmitResponse{Results: out})
	}
}
