// Package access decides whether an actor may perform an operation.
// Every use case calls it explicitly before touching any record.
package access

import (
	"fmt"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
)

// Authorize returns a Forbidden error unless held satisfies required
func Authorize(actor string, held, required entity.Role, action string) error {
	if held.Satisfies(required) {
		return nil
	}
	return errs.NewForbiddenError(actor, action, fmt.Sprintf("requires %s, has %s", required, held))
}

// AuthorizeUser is Authorize for a loaded user
func AuthorizeUser(actor *entity.User, required entity.Role, action string) error {
	return Authorize(actor.Username, actor.Role, required, action)
}

// AuthorizeOwner requires the actor to be a seller who listed item
func AuthorizeOwner(actor *entity.User, item *entity.Item, action string) error {
	if err := AuthorizeUser(actor, entity.Seller(), action); err != nil {
		return err
	}
	if !item.OwnedBy(actor.Username) {
		return errs.NewForbiddenError(actor.Username, action, fmt.Sprintf("item %d belongs to another seller", item.ID))
	}
	return nil
}

// MinPromoterLevel is the admin level needed to change anyone's role
const MinPromoterLevel = 2

// AuthorizeGrant checks that actor may give target the role requested.
// The actor must be an admin of level 2 or more, strictly above the requested
// level and strictly above the target's current level. This also rules out
// self-promotion.
func AuthorizeGrant(actor, target *entity.User, requested entity.Role) error {
	action := fmt.Sprintf("grant %s to %s", requested, target.Username)
	if err := AuthorizeUser(actor, entity.Admin(MinPromoterLevel), action); err != nil {
		return err
	}

	level := actor.Role.Level()
	if requested.Level() >= level {
		return errs.NewForbiddenError(actor.Username, action,
			fmt.Sprintf("cannot grant level %d from level %d", requested.Level(), level))
	}
	if target.Role.Level() >= level {
		return errs.NewForbiddenError(actor.Username, action,
			fmt.Sprintf("target level %d is not below own level %d", target.Role.Level(), level))
	}
	return nil
}
