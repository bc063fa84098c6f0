package jenkins

import (
	"context"
	"net/url"

	"github.com/jenkinsapi/jenkins-workbench/internal/models"
)

// Groups lists security realm groups.
func (f *Facade) Groups(ctx context.Context) ([]models.Group, error) {
	items, err := f.List(ctx, models.Descriptor{Kind: models.KindGroup}, DefaultScope)
	if err != nil {
		return nil, err
	}
	return decodeList[models.Group](items)
}

// Group returns one group with its members.
func (f *Facade) Group(ctx context.Context, name string) (*models.Group, error) {
	return fetchAs[models.Group](ctx, f, models.ForGroup(name))
}

// CreateGroup creates an empty group.
func (f *Facade) CreateGroup(ctx context.Context, name string) error {
	return f.Create(ctx, models.ForGroup(name), Payload{})
}

// DeleteGroup deletes a group.
func (f *Facade) DeleteGroup(ctx context.Context, name string) error {
	return f.Remove(ctx, models.ForGroup(name))
}

func membership(user, group string) Payload {
	return Payload{
		Fields: url.Values{"username": {user}, "groupname": {group}},
		Vars:   map[string]interface{}{"user": user},
	}
}

// AddUserToGroup adds user to group.
func (f *Facade) AddUserToGroup(ctx context.Context, user, group string) error {
	_, err := f.Invoke(ctx, models.ForGroup(group), ActionAddMember, membership(user, group))
	return err
}

// RemoveUserFromGroup removes user from group.
func (f *Facade) RemoveUserFromGroup(ctx context.Context, user, group string) error {
	_, err := f.Invoke(ctx, models.ForGroup(group), ActionRemoveMember, membership(user, group))
	return err
}

// GroupPermissions lists the permission ids granted to a group.
func (f *Facade) GroupPermissions(ctx context.Context, group string) ([]string, error) {
	items, err := f.List(ctx, models.ForGroup(group), ScopePermissions)
	if err != nil {
		return nil, err
	}
	perms := make([]string, 0, len(items))
	for _, it := range items {
		if p := it.StringField("permission"); p != "" {
			perms = append(perms, p)
		}
	}
	return perms, nil
}

// AddGroupPermission grants permission to a group. impliedBy is optional.
func (f *Facade) AddGroupPermission(ctx context.Context, group, permission, impliedBy string) error {
	fields := url.Values{"permissionId": {permission}}
	if impliedBy != "" {
		fields.Set("impliedBy", impliedBy)
	}
	_, err := f.Invoke(ctx, models.ForGroup(group), ActionAddPermission, Payload{Fields: fields})
	return err
}

// RemoveGroupPermission revokes permission from a group. impliedBy is
// optional.
func (f *Facade) RemoveGroupPermission(ctx context.Context, group, permission, impliedBy string) error {
	_, err := f.Invoke(ctx, models.ForGroup(group), ActionRemovePerm, Payload{
		Vars: map[string]interface{}{"permissionId": permission, "impliedBy": impliedBy},
	})
	return err
}

// Users lists known users.
func (f *Facade) Users(ctx context.Context) ([]models.User, error) {
	items, err := f.List(ctx, models.Descriptor{Kind: models.KindUser}, DefaultScope)
	if err != nil {
		return nil, err
	}
	return decodeList[models.User](items)
}

// User returns one user.
func (f *Facade) User(ctx context.Context, id string) (*models.User, error) {
	return fetchAs[models.User](ctx, f, models.ForUser(id))
}
