package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/campuskul/crm-console-api/internal/model"
	"github.com/campuskul/crm-console-api/internal/observer"
	"github.com/campuskul/crm-console-api/internal/session"
	"github.com/campuskul/crm-console-api/pkg/logger"
	"github.com/campuskul/crm-console-api/pkg/utils"
)

// Subject suffixes published under the configured prefix.
const (
	SubjectLeadCreated      = "lead.created"
	SubjectLeadUpdated      = "lead.updated"
	SubjectLeadStageChanged = "lead.stage_changed"
	SubjectLeadDeleted      = "lead.deleted"
	SubjectFollowUpsChanged = "followups.changed"
)

// Publisher emits domain events for other services (notifiers, analytics)
// to consume. Publishing is best effort: a failed publish is logged and
// counted, never surfaced to the API caller.
type Publisher interface {
	LeadCreated(ctx context.Context, lead *model.Lead)
	LeadUpdated(ctx context.Context, lead *model.Lead)
	LeadStageChanged(ctx context.Context, leadID uint, oldStatus, newStatus string)
	LeadDeleted(ctx context.Context, leadID uint)
	// FollowUpsChanged is debounced: bursts of changes within the
	// configured window collapse to one event per organization.
	FollowUpsChanged(ctx context.Context, organizationID uint)
	Close()
}

// LeadEventPayload is the wire shape of lead lifecycle events.
type LeadEventPayload struct {
	OrganizationID uint        `json:"organization_id"`
	LeadID         uint        `json:"lead_id"`
	Lead           *model.Lead `json:"lead,omitempty"`
	OldStatus      string      `json:"old_status,omitempty"`
	NewStatus      string      `json:"new_status,omitempty"`
	OccurredAt     string      `json:"occurred_at"`
}

// FollowUpsChangedPayload is the wire shape of the coalesced follow-up
// change notification.
type FollowUpsChangedPayload struct {
	OrganizationID uint   `json:"organization_id"`
	OccurredAt     string `json:"occurred_at"`
}

// NatsPublisher publishes events over a core NATS connection.
type NatsPublisher struct {
	nc        *nats.Conn
	prefix    string
	debouncer *Debouncer
}

// Ensure NatsPublisher implements Publisher
var _ Publisher = (*NatsPublisher)(nil)

// NewNatsPublisher connects to NATS and prepares the follow-up change
// debouncer with the given coalescing window.
func NewNatsPublisher(url, prefix string, debounceWindow time.Duration) (*NatsPublisher, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Log.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(nc *nats.Conn, s *nats.Subscription, err error) {
			logger.Log.Error("NATS error", zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	p := &NatsPublisher{nc: nc, prefix: prefix}
	p.debouncer = NewDebouncer(debounceWindow, p.publishFollowUpsChanged)
	return p, nil
}

// publish marshals and sends one event. Failures are logged, not returned.
func (p *NatsPublisher) publish(ctx context.Context, suffix string, payload interface{}) {
	subject := p.prefix + "." + suffix
	data := utils.MustMarshalJSON(payload)

	err := p.nc.Publish(subject, data)
	observer.IncEventPublished(subject, err)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to publish event",
			zap.String("subject", subject), zap.Error(err))
		return
	}
	logger.FromContext(ctx).Debug("Published event", zap.String("subject", subject))
}

// LeadCreated emits crm.lead.created.
func (p *NatsPublisher) LeadCreated(ctx context.Context, lead *model.Lead) {
	p.publish(ctx, SubjectLeadCreated, LeadEventPayload{
		OrganizationID: lead.OrganizationID,
		LeadID:         lead.ID,
		Lead:           lead,
		OccurredAt:     utils.FormatISO8601(utils.Now()),
	})
}

// LeadUpdated emits crm.lead.updated.
func (p *NatsPublisher) LeadUpdated(ctx context.Context, lead *model.Lead) {
	p.publish(ctx, SubjectLeadUpdated, LeadEventPayload{
		OrganizationID: lead.OrganizationID,
		LeadID:         lead.ID,
		Lead:           lead,
		OccurredAt:     utils.FormatISO8601(utils.Now()),
	})
}

// LeadStageChanged emits crm.lead.stage_changed with the old and new stage
// names.
func (p *NatsPublisher) LeadStageChanged(ctx context.Context, leadID uint, oldStatus, newStatus string) {
	orgID := organizationID(ctx)
	p.publish(ctx, SubjectLeadStageChanged, LeadEventPayload{
		OrganizationID: orgID,
		LeadID:         leadID,
		OldStatus:      oldStatus,
		NewStatus:      newStatus,
		OccurredAt:     utils.FormatISO8601(utils.Now()),
	})
}

// LeadDeleted emits crm.lead.deleted.
func (p *NatsPublisher) LeadDeleted(ctx context.Context, leadID uint) {
	p.publish(ctx, SubjectLeadDeleted, LeadEventPayload{
		OrganizationID: organizationID(ctx),
		LeadID:         leadID,
		OccurredAt:     utils.FormatISO8601(utils.Now()),
	})
}

// FollowUpsChanged schedules a coalesced crm.followups.changed emission.
func (p *NatsPublisher) FollowUpsChanged(ctx context.Context, organizationID uint) {
	p.debouncer.Trigger(organizationID)
}

// publishFollowUpsChanged is the debouncer's flush callback. It runs on a
// timer goroutine, so a panic here would take down the process.
func (p *NatsPublisher) publishFollowUpsChanged(organizationID uint) {
	defer utils.RecoverWithLog(context.Background(), "follow-up change broadcast")
	p.publish(context.Background(), SubjectFollowUpsChanged, FollowUpsChangedPayload{
		OrganizationID: organizationID,
		OccurredAt:     utils.FormatISO8601(utils.Now()),
	})
}

// Close flushes pending debounced events and drains the connection.
func (p *NatsPublisher) Close() {
	p.debouncer.Stop()
	if err := p.nc.Drain(); err != nil {
		logger.Log.Warn("Failed to drain NATS connection", zap.Error(err))
	}
}

// organizationID pulls the session scope for event stamping; events from
// unauthenticated paths carry zero.
func organizationID(ctx context.Context) uint {
	orgID, err := session.OrganizationFromContext(ctx)
	if err != nil {
		return 0
	}
	return orgID
}
