package mgo

import (
	"context"

	msgmodel "ChatProject/module/message/model"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collMessages = "messages"

// MessageStore 私聊消息存取
type MessageStore struct {
	coll *mongo.Collection
}

func NewMessageStore(db *mongo.Database) *MessageStore {
	return &MessageStore{coll: db.Collection(collMessages)}
}

func (s *MessageStore) Insert(ctx context.Context, m *msgmodel.Message) error {
	_, err := s.coll.InsertOne(ctx, m)
	return errors.Wrap(err, "insert message")
}

// between 两人之间的消息过滤条件（双向）
func between(a, b string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"from_id": a, "to_id": b},
		bson.M{"from_id": b, "to_id": a},
	}}
}

// List 取两人之间最近 limit 条；beforeID 非空时取其之前的一页（_id 为雪花ID，
// 字符串序即时间序）。返回按时间升序。
func (s *MessageStore) List(ctx context.Context, a, b, beforeID string, limit int64) ([]msgmodel.Message, error) {
	filter := between(a, b)
	if beforeID != "" {
		filter["_id"] = bson.M{"$lt": beforeID}
	}
	if limit <= 0 {
		limit = 50
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}).SetLimit(limit)
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find messages")
	}
	defer cur.Close(ctx)

	var out []msgmodel.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode messages")
	}
	// 倒序取出，翻回升序
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Last 两人之间最后一条消息；没有返回 nil
func (s *MessageStore) Last(ctx context.Context, a, b string) (*msgmodel.Message, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
	m := &msgmodel.Message{}
	err := s.coll.FindOne(ctx, between(a, b), opts).Decode(m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "last message")
	}
	return m, nil
}

// MarkReceived 把 other 发给我的 sent 消息标记为 received；返回是否有更新
func (s *MessageStore) MarkReceived(ctx context.Context, me, other string) (bool, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"from_id": other, "to_id": me, "state": msgmodel.StateSent},
		bson.M{"$set": bson.M{"state": msgmodel.StateReceived}})
	if err != nil {
		return false, errors.Wrap(err, "mark received")
	}
	return res.ModifiedCount > 0, nil
}

// MarkRead 把 other 发给我的未读消息标记为 read；返回是否有消息被更新
func (s *MessageStore) MarkRead(ctx context.Context, me, other string) (bool, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"from_id": other, "to_id": me, "state": bson.M{"$ne": msgmodel.StateRead}},
		bson.M{"$set": bson.M{"state": msgmodel.StateRead}})
	if err != nil {
		return false, errors.Wrap(err, "mark read")
	}
	return res.ModifiedCount > 0, nil
}

// EnsureIndexes 启动时建索引
func (s *MessageStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "from_id", Value: 1}, {Key: "to_id", Value: 1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "to_id", Value: 1}, {Key: "state", Value: 1}}},
	})
	return errors.Wrap(err, "create message indexes")
}
