/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/botobag/artemis/graphql"
)

// UserDirectory is an in-process GraphQL backend serving users. Each directory exposes one extra
// string field in addition to id and name (e.g., "email" for one endpoint and "login" for another).
//
//	type User { id: ID!, name: String, <field>: String }
//	type Query { users: [User], user(id: ID!): User }
//	type Mutation { rename(id: ID!, name: String!): User }
type UserDirectory struct {
	field string

	mutex sync.Mutex
	users map[string]map[string]interface{}

	// Number of root fields resolved
	hits int
}

// NewUserDirectory creates one user per value, taking the names Alice, Bob and Charlie (with ids
// "1", "2" and "3") in that order; values gives the extra field of each user. Without values, the
// directory holds all three users and leaves the extra field unset.
func NewUserDirectory(field string, values ...string) *UserDirectory {
	d := &UserDirectory{
		field: field,
		users: map[string]map[string]interface{}{},
	}
	names := []string{"Alice", "Bob", "Charlie"}
	if len(values) > 0 && len(values) < len(names) {
		names = names[:len(values)]
	}
	for i, name := range names {
		id := fmt.Sprint(i + 1)
		user := map[string]interface{}{
			"id":   id,
			"name": name,
		}
		if i < len(values) {
			user[field] = values[i]
		}
		d.users[id] = user
	}
	return d
}

// Hits returns the number of root fields resolved so far.
func (d *UserDirectory) Hits() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.hits
}

func (d *UserDirectory) copyOf(id string) map[string]interface{} {
	user, exists := d.users[id]
	if !exists {
		return nil
	}
	result := make(map[string]interface{}, len(user))
	for k, v := range user {
		result[k] = v
	}
	return result
}

func (d *UserDirectory) list(ctx context.Context, source interface{}, info graphql.ResolveInfo) (interface{}, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.hits++

	ids := make([]string, 0, len(d.users))
	for id := range d.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	users := make([]interface{}, len(ids))
	for i, id := range ids {
		users[i] = d.copyOf(id)
	}
	return users, nil
}

func (d *UserDirectory) get(ctx context.Context, source interface{}, info graphql.ResolveInfo) (interface{}, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.hits++

	user := d.copyOf(fmt.Sprint(info.Args().Get("id")))
	if user == nil {
		return nil, nil
	}
	return user, nil
}

func (d *UserDirectory) rename(ctx context.Context, source interface{}, info graphql.ResolveInfo) (interface{}, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.hits++

	id := fmt.Sprint(info.Args().Get("id"))
	user, exists := d.users[id]
	if !exists {
		return nil, graphql.NewError(fmt.Sprintf("user %s not found", id))
	}
	user["name"] = info.Args().Get("name")
	return d.copyOf(id), nil
}

// Schema builds the GraphQL schema of the directory.
func (d *UserDirectory) Schema() graphql.Schema {
	userType := &graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id": {
				Type: graphql.NonNullOfType(graphql.ID()),
			},
			"name": {
				Type: graphql.T(graphql.String()),
			},
			d.field: {
				Type: graphql.T(graphql.String()),
			},
		},
	}

	idArg := graphql.ArgumentConfig{
		Type: graphql.NonNullOfType(graphql.ID()),
	}

	return graphql.MustNewSchema(&graphql.SchemaConfig{
		Query: graphql.MustNewObject(&graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"users": {
					Type:     graphql.ListOf(userType),
					Resolver: graphql.FieldResolverFunc(d.list),
				},
				"user": {
					Type:     userType,
					Args:     graphql.ArgumentConfigMap{"id": idArg},
					Resolver: graphql.FieldResolverFunc(d.get),
				},
			},
		}),
		Mutation: graphql.MustNewObject(&graphql.ObjectConfig{
			Name: "Mutation",
			Fields: graphql.Fields{
				"rename": {
					Type: userType,
					Args: graphql.ArgumentConfigMap{
						"id": idArg,
						"name": {
							Type: graphql.NonNullOfType(graphql.String()),
						},
					},
					Resolver: graphql.FieldResolverFunc(d.rename),
				},
			},
		}),
	})
}
