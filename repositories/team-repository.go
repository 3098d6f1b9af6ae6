package repositories

import (
	"context"
	"errors"

	"nexus-project/collaboration-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTeamRepository persists teams and membership rows in two collections.
type MongoTeamRepository struct {
	teamsCollection   *mongo.Collection
	membersCollection *mongo.Collection
}

func NewMongoTeamRepository(teamsCollection, membersCollection *mongo.Collection) *MongoTeamRepository {
	return &MongoTeamRepository{
		teamsCollection:   teamsCollection,
		membersCollection: membersCollection,
	}
}

func (r *MongoTeamRepository) InsertTeam(ctx context.Context, team *models.Team) error {
	if team.ID.IsZero() {
		team.ID = primitive.NewObjectID()
	}
	result, err := r.teamsCollection.InsertOne(ctx, team)
	if err != nil {
		return storeErr("insert team", err)
	}
	team.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MongoTeamRepository) DeleteTeam(ctx context.Context, teamID string) error {
	objectID, err := primitive.ObjectIDFromHex(teamID)
	if err != nil {
		return models.NewValidationError("invalid team ID format: %s", teamID)
	}
	if _, err := r.teamsCollection.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return storeErr("delete team", err)
	}
	return nil
}

func (r *MongoTeamRepository) GetTeamByID(ctx context.Context, teamID string) (*models.Team, error) {
	objectID, err := primitive.ObjectIDFromHex(teamID)
	if err != nil {
		return nil, models.NewValidationError("invalid team ID format: %s", teamID)
	}
	var team models.Team
	if err := r.teamsCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&team); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &models.NotFoundError{Resource: "team", ID: teamID}
		}
		return nil, storeErr("get team", err)
	}
	return &team, nil
}

func (r *MongoTeamRepository) UpdateTeamFields(ctx context.Context, teamID, name, description string) error {
	objectID, err := primitive.ObjectIDFromHex(teamID)
	if err != nil {
		return models.NewValidationError("invalid team ID format: %s", teamID)
	}
	update := bson.M{"$set": bson.M{"name": name, "description": description}}
	result, err := r.teamsCollection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return storeErr("update team", err)
	}
	if result.MatchedCount == 0 {
		return &models.NotFoundError{Resource: "team", ID: teamID}
	}
	return nil
}

func (r *MongoTeamRepository) GetTeamsForUser(ctx context.Context, userID string) ([]models.Team, error) {
	cursor, err := r.membersCollection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, storeErr("find memberships for user", err)
	}
	defer cursor.Close(ctx)

	var memberships []models.Member
	if err := cursor.All(ctx, &memberships); err != nil {
		return nil, storeErr("decode memberships", err)
	}

	teamIDs := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		objectID, err := primitive.ObjectIDFromHex(m.TeamID)
		if err != nil {
			continue
		}
		teamIDs = append(teamIDs, objectID)
	}
	if len(teamIDs) == 0 {
		return []models.Team{}, nil
	}

	teamCursor, err := r.teamsCollection.Find(ctx, bson.M{"_id": bson.M{"$in": teamIDs}})
	if err != nil {
		return nil, storeErr("find teams for user", err)
	}
	defer teamCursor.Close(ctx)

	var teams []models.Team
	if err := teamCursor.All(ctx, &teams); err != nil {
		return nil, storeErr("decode teams", err)
	}
	return teams, nil
}

func (r *MongoTeamRepository) InsertMember(ctx context.Context, member *models.Member) error {
	if member.ID.IsZero() {
		member.ID = primitive.NewObjectID()
	}
	if _, err := r.membersCollection.InsertOne(ctx, member); err != nil {
		return storeErr("insert member", err)
	}
	return nil
}

func (r *MongoTeamRepository) GetMembership(ctx context.Context, teamID, userID string) (*models.Member, error) {
	var member models.Member
	filter := bson.M{"team_id": teamID, "user_id": userID}
	if err := r.membersCollection.FindOne(ctx, filter).Decode(&member); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &models.NotFoundError{Resource: "membership", ID: userID}
		}
		return nil, storeErr("get membership", err)
	}
	return &member, nil
}

func (r *MongoTeamRepository) GetMembersForTeam(ctx context.Context, teamID string) ([]models.Member, error) {
	cursor, err := r.membersCollection.Find(ctx, bson.M{"team_id": teamID})
	if err != nil {
		return nil, storeErr("find members for team", err)
	}
	defer cursor.Close(ctx)

	var members []models.Member
	if err := cursor.All(ctx, &members); err != nil {
		return nil, storeErr("decode members", err)
	}
	return members, nil
}

func (r *MongoTeamRepository) UpdateMemberRole(ctx context.Context, teamID, userID string, role models.Role) error {
	filter := bson.M{"team_id": teamID, "user_id": userID}
	update := bson.M{"$set": bson.M{"role": role}}
	result, err := r.membersCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return storeErr("update member role", err)
	}
	if result.MatchedCount == 0 {
		return &models.NotFoundError{Resource: "membership", ID: userID}
	}
	return nil
}

func (r *MongoTeamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	filter := bson.M{"team_id": teamID, "user_id": userID}
	result, err := r.membersCollection.DeleteOne(ctx, filter)
	if err != nil {
		return storeErr("remove member", err)
	}
	if result.DeletedCount == 0 {
		return &models.NotFoundError{Resource: "membership", ID: userID}
	}
	return nil
}

func (r *MongoTeamRepository) CountOwners(ctx context.Context, teamID string) (int64, error) {
	filter := bson.M{"team_id": teamID, "role": models.RoleOwner}
	count, err := r.membersCollection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, storeErr("count owners", err)
	}
	return count, nil
}
