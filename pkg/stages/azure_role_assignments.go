package stages

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization"
	"github.com/praetorian-inc/blackcat/internal/helpers"
	"github.com/praetorian-inc/blackcat/internal/message"
	"github.com/praetorian-inc/blackcat/pkg/pool"
)

// RoleAssignmentDetail is one RBAC assignment with its resolved role name.
type RoleAssignmentDetail struct {
	SubscriptionID   string `json:"subscriptionId"`
	PrincipalID      string `json:"principalId"`
	RoleDefinitionID string `json:"roleDefinitionId"`
	RoleDisplayName  string `json:"roleDisplayName,omitempty"`
	Scope            string `json:"scope"`
}

// RoleAssignmentReport is the module output.
type RoleAssignmentReport struct {
	Assignments []RoleAssignmentDetail `json:"assignments"`
	Summary     pool.Summary           `json:"summary"`
}

// CollectRoleAssignments enumerates role assignments for each subscription
// at subscription scope. Subscription results are cached in the AzBatch
// partition; each subscription is an independent unit of work.
func CollectRoleAssignments(ctx context.Context, sess *helpers.Session, subscriptions []string, throttle int) (*RoleAssignmentReport, error) {
	if throttle <= 0 {
		throttle = sess.Config.ThrottleLimit
	}

	cred, err := sess.Credential()
	if err != nil {
		return nil, fmt.Errorf("failed to get Azure credentials: %w", err)
	}

	roleDefClient, err := armauthorization.NewRoleDefinitionsClient(cred, &arm.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create role definitions client: %w", err)
	}

	message.Info("Collecting role assignments across %d subscriptions", len(subscriptions))

	outcomes, summary := pool.Run(ctx, subscriptions, throttle,
		func(ctx context.Context, subscription string) ([]RoleAssignmentDetail, error) {
			return subscriptionRoleAssignments(ctx, sess, roleDefClient, subscription)
		})

	report := &RoleAssignmentReport{Assignments: []RoleAssignmentDetail{}, Summary: summary}
	for _, assignments := range pool.Successes(outcomes) {
		report.Assignments = append(report.Assignments, assignments...)
	}
	for _, failed := range pool.Failures(outcomes) {
		message.Warning("Subscription %s failed: %v", failed.Input, failed.Err)
	}

	return report, nil
}

func subscriptionRoleAssignments(ctx context.Context, sess *helpers.Session, roleDefClient *armauthorization.RoleDefinitionsClient, subscription string) ([]RoleAssignmentDetail, error) {
	key := helpers.BatchFingerprint("roleassignments", subscription)

	if !sess.NoCache {
		var cached []RoleAssignmentDetail
		if sess.Cache.GetInto(helpers.CachePartitionAzBatch, key, &cached) {
			slog.Debug("Role assignment cache hit", slog.String("subscription", subscription))
			return cached, nil
		}
	}

	cred, err := sess.Credential()
	if err != nil {
		return nil, err
	}

	authClient, err := armauthorization.NewRoleAssignmentsClient(subscription, cred, &arm.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create authorization client: %w", err)
	}

	scope := fmt.Sprintf("/subscriptions/%s", subscription)
	pager := authClient.NewListForScopePager(scope, &armauthorization.RoleAssignmentsClientListForScopeOptions{})

	assignments := make([]RoleAssignmentDetail, 0)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get role assignments page: %w", err)
		}

		for _, assignment := range page.Value {
			if assignment == nil || assignment.Properties == nil {
				continue
			}

			detail := RoleAssignmentDetail{
				SubscriptionID:   subscription,
				PrincipalID:      *assignment.Properties.PrincipalID,
				RoleDefinitionID: *assignment.Properties.RoleDefinitionID,
				Scope:            *assignment.Properties.Scope,
			}

			// Best effort role name resolution.
			if resp, err := roleDefClient.Get(ctx, detail.Scope, detail.RoleDefinitionID, nil); err == nil {
				if resp.Properties != nil && resp.Properties.RoleName != nil {
					detail.RoleDisplayName = *resp.Properties.RoleName
				}
			}

			assignments = append(assignments, detail)
		}
	}

	if err := sess.Cache.Set(helpers.CachePartitionAzBatch, key, assignments); err != nil {
		slog.Debug("Role assignment cache store skipped", slog.String("reason", err.Error()))
	}

	return assignments, nil
}
