package e2e

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cucumber/godog"

	"realmbridge/internal/audit"
	dirmodels "realmbridge/internal/directory/models"
	id "realmbridge/pkg/domain"
)

// RegisterSteps registers all step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background steps
	ctx.Step(`^the bridge is running$`, func() error { return tc.Start(false) })
	ctx.Step(`^the bridge is running with lenient lifecycle$`, func() error { return tc.Start(true) })
	ctx.Step(`^the platform creates realm "([^"]*)" for domain "([^"]*)"$`, tc.createRealm)
	ctx.Step(`^user "([^"]*)" belongs to tenant "([^"]*)"$`, tc.registerUser)
	ctx.Step(`^user "([^"]*)" belongs to tenant "([^"]*)" as "([^"]*)"$`, tc.registerUserWithRole)

	// Token login
	ctx.Step(`^"([^"]*)" logs in to "([^"]*)" as "([^"]*)"$`, tc.login)
	ctx.Step(`^"([^"]*)" logs in to "([^"]*)" as "([^"]*)" with a token signed for "([^"]*)"$`, tc.loginSignedFor)
	ctx.Step(`^a login to "([^"]*)" is sent without a token$`, tc.loginWithoutToken)

	// Credentials
	ctx.Step(`^"([^"]*)" requests an API key from "([^"]*)" as "([^"]*)"$`, tc.requestAPIKey)
	ctx.Step(`^"([^"]*)" requests an API key from "([^"]*)" as "([^"]*)" with role "([^"]*)"$`, tc.requestAPIKeyWithRole)

	// Lifecycle
	ctx.Step(`^the platform deactivates realm "([^"]*)"$`, tc.deactivateRealm)
	ctx.Step(`^tenant "([^"]*)" deactivates realm "([^"]*)"$`, tc.deactivateRealmAs)
	ctx.Step(`^the platform moves realm "([^"]*)" from "([^"]*)" to "([^"]*)"$`, tc.moveRealm)

	// Assertions
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, tc.responseFieldShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be (\d+)$`, tc.responseFieldShouldBeNumber)
	ctx.Step(`^the response field "([^"]*)" should not be empty$`, tc.responseFieldShouldNotBeEmpty)
	ctx.Step(`^I remember the response field "([^"]*)"$`, tc.rememberField)
	ctx.Step(`^the response field "([^"]*)" should match the remembered value$`, tc.responseFieldShouldMatchRemembered)
	ctx.Step(`^the user "([^"]*)" should exist in tenant "([^"]*)"$`, tc.userShouldExist)
	ctx.Step(`^the user "([^"]*)" should not exist in tenant "([^"]*)"$`, tc.userShouldNotExist)
	ctx.Step(`^the user "([^"]*)" of tenant "([^"]*)" should have role "([^"]*)"$`, tc.userShouldHaveRole)
	ctx.Step(`^the user "([^"]*)" of tenant "([^"]*)" should have (\d+) sessions?$`, tc.userShouldHaveSessions)
	ctx.Step(`^the audit log should contain "([^"]*)"$`, tc.auditShouldContain)
}

func (tc *TestContext) createRealm(key, domain string) error {
	raw, err := tc.Sign(platformHint, "admin", "platform.test", "")
	if err != nil {
		return err
	}
	return tc.PostForm("/zimbra/realm/create", platformHint, url.Values{
		"json_web_token": {raw},
		"domain_id":      {key},
		"domain_name":    {domain},
	})
}

func (tc *TestContext) registerUser(email, tenant string) error {
	return tc.registerUserWithRole(email, tenant, string(dirmodels.RoleMember))
}

func (tc *TestContext) registerUserWithRole(email, tenant, role string) error {
	r, err := dirmodels.ParseRole(role)
	if err != nil {
		return err
	}
	_, err = tc.App.Directory.Register(context.Background(), id.TenantKey(tenant), email, "", r)
	return err
}

func (tc *TestContext) login(user, tenant, realm string) error {
	return tc.loginSignedFor(user, tenant, realm, tenant)
}

func (tc *TestContext) loginSignedFor(user, tenant, realm, signer string) error {
	raw, err := tc.Sign(signer, user, realm, "")
	if err != nil {
		return err
	}
	return tc.PostForm("/zimbra/jwt", tenant, url.Values{"json_web_token": {raw}})
}

func (tc *TestContext) loginWithoutToken(tenant string) error {
	return tc.PostForm("/zimbra/jwt", tenant, url.Values{"json_web_token": {""}})
}

func (tc *TestContext) requestAPIKey(user, tenant, realm string) error {
	return tc.requestAPIKeyWithRole(user, tenant, realm, "")
}

func (tc *TestContext) requestAPIKeyWithRole(user, tenant, realm, role string) error {
	raw, err := tc.Sign(tenant, user, realm, role)
	if err != nil {
		return err
	}
	return tc.PostForm("/zimbra/api_key", tenant, url.Values{"json_web_token": {raw}})
}

func (tc *TestContext) deactivateRealm(key string) error {
	return tc.deactivateRealmAs(platformHint, key)
}

// deactivateRealmAs sends the request from signer's host, signed with signer's key.
func (tc *TestContext) deactivateRealmAs(signer, key string) error {
	raw, err := tc.Sign(signer, "admin", "platform.test", "")
	if err != nil {
		return err
	}
	return tc.PostForm("/zimbra/realm/deactivate", signer, url.Values{
		"json_web_token": {raw},
		"realm_id":       {key},
	})
}

func (tc *TestContext) moveRealm(key, oldDomain, newDomain string) error {
	raw, err := tc.Sign(platformHint, "admin", "platform.test", "")
	if err != nil {
		return err
	}
	return tc.PostForm("/zimbra/realm/allow_domain", platformHint, url.Values{
		"json_web_token":    {raw},
		"realm_id":          {key},
		"old_domain_name":   {oldDomain},
		"allow_domain_name": {newDomain},
	})
}

func (tc *TestContext) responseStatusShouldBe(status int) error {
	if got := tc.GetLastResponseStatus(); got != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, got, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) responseFieldShouldBe(field, expected string) error {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(value) != expected {
		return fmt.Errorf("expected %s to be %q, got %v", field, expected, value)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldBeNumber(field string, expected int) error {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	n, ok := value.(float64)
	if !ok || int(n) != expected {
		return fmt.Errorf("expected %s to be %d, got %v", field, expected, value)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldNotBeEmpty(field string) error {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if s, ok := value.(string); !ok || s == "" {
		return fmt.Errorf("expected %s to be a non-empty string, got %v", field, value)
	}
	return nil
}

func (tc *TestContext) rememberField(field string) error {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	tc.Remembered[field] = value
	return nil
}

func (tc *TestContext) responseFieldShouldMatchRemembered(field string) error {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if want, ok := tc.Remembered[field]; !ok || want != value {
		return fmt.Errorf("expected %s to be %v, got %v", field, tc.Remembered[field], value)
	}
	return nil
}

func (tc *TestContext) findUser(email, tenant string) (*dirmodels.User, error) {
	return tc.App.Directory.FindByEmail(context.Background(), id.TenantKey(tenant), email)
}

func (tc *TestContext) userShouldExist(email, tenant string) error {
	if _, err := tc.findUser(email, tenant); err != nil {
		return fmt.Errorf("expected %s in %s: %w", email, tenant, err)
	}
	return nil
}

func (tc *TestContext) userShouldNotExist(email, tenant string) error {
	if _, err := tc.findUser(email, tenant); err == nil {
		return fmt.Errorf("expected no user %s in %s", email, tenant)
	}
	return nil
}

func (tc *TestContext) userShouldHaveRole(email, tenant, role string) error {
	u, err := tc.findUser(email, tenant)
	if err != nil {
		return err
	}
	if string(u.Role) != role {
		return fmt.Errorf("expected role %s, got %s", role, u.Role)
	}
	return nil
}

func (tc *TestContext) userShouldHaveSessions(email, tenant string, count int) error {
	u, err := tc.findUser(email, tenant)
	if err != nil {
		return err
	}
	sessions, err := tc.App.Directory.ListSessions(context.Background(), u.ID)
	if err != nil {
		return err
	}
	if len(sessions) != count {
		return fmt.Errorf("expected %d sessions, got %d", count, len(sessions))
	}
	return nil
}

func (tc *TestContext) auditShouldContain(action string) error {
	for _, a := range tc.App.Audit.Actions() {
		if a == audit.Action(action) {
			return nil
		}
	}
	return fmt.Errorf("audit log has no %s event: %v", action, tc.App.Audit.Actions())
}
