package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
)

type redisRepository struct {
	rdb *redis.Client
}

// NewRedisRepository returns the Redis backend. A conversation is a hash plus
// a JSON-encoded entry list; each owner has a sorted set indexing their
// conversations by negated update time.
func NewRedisRepository(rdb *redis.Client) Store {
	return &redisRepository{rdb: rdb}
}

func (r *redisRepository) Name() string { return "redis" }

// Key Generation Helpers
func (r *redisRepository) conversationKey(id string) string { return fmt.Sprintf("conversation:%s", id) }
func (r *redisRepository) entriesKey(id string) string      { return fmt.Sprintf("conversation:%s:entries", id) }
func (r *redisRepository) ownerConversationsKey(ownerID string) string {
	return fmt.Sprintf("owner:%s:conversations", ownerID)
}
func (r *redisRepository) ownerTasksKey(ownerID string) string {
	return fmt.Sprintf("owner:%s:tasks", ownerID)
}

// --- Conversation Operations ---

func (r *redisRepository) LoadOrCreate(ctx context.Context, ownerID, conversationID, seedTitle string) (*model.Conversation, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if conversationID != "" {
		conv, err := r.Get(ctx, ownerID, conversationID)
		if err == nil {
			return conv, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	conv := newConversation(ownerID, seedTitle)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, r.conversationKey(conv.ID), map[string]interface{}{
		"id":         conv.ID,
		"owner_id":   conv.OwnerID,
		"title":      conv.Title,
		"created_at": conv.CreatedAt.UnixMilli(),
		"updated_at": conv.UpdatedAt.UnixMilli(),
	})
	pipe.ZAdd(ctx, r.ownerConversationsKey(ownerID), redis.Z{Score: float64(-conv.UpdatedAt.UnixMilli()), Member: conv.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("could not create conversation: %w", err)
	}
	return conv, nil
}

func (r *redisRepository) Append(ctx context.Context, conv *model.Conversation, entries ...model.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("could not encode entry: %w", err)
		}
		values = append(values, data)
	}

	now := model.Now()
	err := r.ownedWrite(ctx, conv.OwnerID, conv.ID, func(pipe redis.Pipeliner) {
		pipe.RPush(ctx, r.entriesKey(conv.ID), values...)
		pipe.HSet(ctx, r.conversationKey(conv.ID), "updated_at", now.UnixMilli())
		pipe.ZAdd(ctx, r.ownerConversationsKey(conv.OwnerID), redis.Z{Score: float64(-now.UnixMilli()), Member: conv.ID})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("could not append entries: %w", err)
	}
	mirror(conv, entries, now)
	return nil
}

func (r *redisRepository) List(ctx context.Context, ownerID string) ([]model.ConversationSummary, error) {
	// Equal scores are ordered by member, which gives the id tie-break.
	ids, err := r.rdb.ZRange(ctx, r.ownerConversationsKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("could not list conversations: %w", err)
	}

	pipe := r.rdb.Pipeline()
	cmds := make([]*redis.SliceCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HMGet(ctx, r.conversationKey(id), "title", "updated_at", "owner_id")
	}
	if len(ids) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("could not load conversation summaries: %w", err)
		}
	}

	summaries := make([]model.ConversationSummary, 0, len(ids))
	for i, id := range ids {
		vals := cmds[i].Val()
		// Rows without an owner are leftovers of a write that raced a delete.
		if len(vals) != 3 || vals[1] == nil || vals[2] != ownerID {
			continue
		}
		title, _ := vals[0].(string)
		updatedAt, err := parseMillis(vals[1])
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, model.ConversationSummary{ID: id, Title: title, UpdatedAt: updatedAt})
	}
	return summaries, nil
}

func (r *redisRepository) Get(ctx context.Context, ownerID, conversationID string) (*model.Conversation, error) {
	fields, err := r.rdb.HGetAll(ctx, r.conversationKey(conversationID)).Result()
	if err != nil {
		return nil, fmt.Errorf("could not get conversation: %w", err)
	}
	if len(fields) == 0 || fields["owner_id"] != ownerID {
		return nil, ErrNotFound
	}

	conv := &model.Conversation{ID: fields["id"], OwnerID: fields["owner_id"], Title: fields["title"]}
	if conv.CreatedAt, err = parseMillis(fields["created_at"]); err != nil {
		return nil, err
	}
	if conv.UpdatedAt, err = parseMillis(fields["updated_at"]); err != nil {
		return nil, err
	}

	raw, err := r.rdb.LRange(ctx, r.entriesKey(conversationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("could not get entries: %w", err)
	}
	conv.Messages = make([]model.Entry, 0, len(raw))
	for _, item := range raw {
		var e model.Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("could not decode entry: %w", err)
		}
		conv.Messages = append(conv.Messages, e)
	}
	return conv, nil
}

func (r *redisRepository) Rename(ctx context.Context, ownerID, conversationID, title string) error {
	now := model.Now()
	return r.ownedWrite(ctx, ownerID, conversationID, func(pipe redis.Pipeliner) {
		pipe.HSet(ctx, r.conversationKey(conversationID), "title", title, "updated_at", now.UnixMilli())
		pipe.ZAdd(ctx, r.ownerConversationsKey(ownerID), redis.Z{Score: float64(-now.UnixMilli()), Member: conversationID})
	})
}

func (r *redisRepository) Delete(ctx context.Context, ownerID, conversationID string) error {
	if err := r.checkOwner(ctx, ownerID, conversationID); err != nil {
		return err
	}
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, r.conversationKey(conversationID), r.entriesKey(conversationID))
	pipe.ZRem(ctx, r.ownerConversationsKey(ownerID), conversationID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("could not delete conversation: %w", err)
	}
	return nil
}

const maxWatchRetries = 5

// ownedWrite queues write in a MULTI that only commits if the conversation
// hash still belongs to ownerID and was not touched since the check. A
// concurrent Delete therefore turns the write into ErrNotFound.
func (r *redisRepository) ownedWrite(ctx context.Context, ownerID, conversationID string, write func(pipe redis.Pipeliner)) error {
	key := r.conversationKey(conversationID)
	txf := func(tx *redis.Tx) error {
		owner, err := tx.HGet(ctx, key, "owner_id").Result()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("could not check conversation owner: %w", err)
		}
		if owner != ownerID {
			return ErrNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			write(pipe)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("conversation %s kept changing: %w", conversationID, redis.TxFailedErr)
}

func (r *redisRepository) checkOwner(ctx context.Context, ownerID, conversationID string) error {
	owner, err := r.rdb.HGet(ctx, r.conversationKey(conversationID), "owner_id").Result()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("could not check conversation owner: %w", err)
	}
	if owner != ownerID {
		return ErrNotFound
	}
	return nil
}

// --- Task Operations ---

func (r *redisRepository) CreateTask(ctx context.Context, task *model.Task) error {
	if err := prepareTask(task); err != nil {
		return err
	}
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("could not encode task: %w", err)
	}
	return r.rdb.LPush(ctx, r.ownerTasksKey(task.OwnerID), data).Err()
}

func (r *redisRepository) ListTasks(ctx context.Context, ownerID string) ([]model.Task, error) {
	raw, err := r.rdb.LRange(ctx, r.ownerTasksKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}
	tasks := make([]model.Task, 0, len(raw))
	for _, item := range raw {
		var t model.Task
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, fmt.Errorf("could not decode task: %w", err)
		}
		tasks = append(tasks, t)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func parseMillis(v interface{}) (t time.Time, err error) {
	s, ok := v.(string)
	if !ok {
		return t, fmt.Errorf("unexpected timestamp value %v", v)
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return t, fmt.Errorf("could not parse timestamp %q: %w", s, err)
	}
	return fromMillis(ms), nil
}
