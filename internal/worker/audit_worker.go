package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/St1cky1/task-planner/internal/entity"
	"github.com/St1cky1/task-planner/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectDelay = 5 * time.Second

// DeliverySource - очередь, из которой воркер читает сообщения аудита
type DeliverySource interface {
	Consume(consumerTag string) (<-chan amqp.Delivery, func() error, error)
}

// AuditWorker сохраняет события аудита из RabbitMQ в хранилище
type AuditWorker struct {
	source     DeliverySource
	auditRepo  repository.ITaskAuditRepository
	retryDelay time.Duration
}

func NewAuditWorker(source DeliverySource, auditRepo repository.ITaskAuditRepository) *AuditWorker {
	return &AuditWorker{
		source:     source,
		auditRepo:  auditRepo,
		retryDelay: reconnectDelay,
	}
}

// Start блокируется до отмены ctx. При обрыве канала заново вызывает Consume,
// источник сам переоткрывает соединение с брокером.
func (w *AuditWorker) Start(ctx context.Context) {
	log.Println("Audit Worker запущен")
	for {
		err := w.run(ctx)
		if ctx.Err() != nil {
			log.Println("Audit Worker остановлен")
			return
		}
		log.Printf("Audit Worker ошибка: %v, переподключение через %s", err, w.retryDelay)

		select {
		case <-ctx.Done():
			log.Println("Audit Worker остановлен")
			return
		case <-time.After(w.retryDelay):
		}
	}
}

func (w *AuditWorker) run(ctx context.Context) error {
	msgs, closeFn, err := w.source.Consume("audit_worker")
	if err != nil {
		return fmt.Errorf("ошибка создания consumer: %w", err)
	}
	defer closeFn()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("канал сообщений закрыт")
			}
			w.processMessage(ctx, msg)
		}
	}
}

func (w *AuditWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var auditMsg entity.AuditMessage
	if err := json.Unmarshal(msg.Body, &auditMsg); err != nil {
		log.Printf("Ошибка парсинга сообщения: %v", err)
		msg.Nack(false, false) // битое сообщение в очередь не возвращаем
		return
	}

	taskAudit, err := ConvertToTaskAudit(&auditMsg)
	if err != nil {
		log.Printf("Ошибка конвертации: %v", err)
		msg.Nack(false, false)
		return
	}

	if err := w.auditRepo.Create(ctx, taskAudit); err != nil {
		log.Printf("Ошибка сохранения аудита: %v", err)
		msg.Nack(false, true)
		return
	}

	msg.Ack(false)
	log.Printf("Аудит сохранен: %s задача ID=%s", taskAudit.Action, taskAudit.EntityID)
}

// ConvertToTaskAudit сериализует значения сообщения в JSON-строки записи аудита
func ConvertToTaskAudit(msg *entity.AuditMessage) (*entity.TaskAudit, error) {
	oldValues, err := marshalOptional(msg.OldValues)
	if err != nil {
		return nil, err
	}
	newValues, err := marshalOptional(msg.NewValues)
	if err != nil {
		return nil, err
	}
	changes, err := marshalOptional(msg.Changes)
	if err != nil {
		return nil, err
	}

	return &entity.TaskAudit{
		UserID:     msg.UserID,
		Action:     msg.Action,
		EntityType: "task",
		EntityID:   msg.EntityID,
		OldValues:  oldValues,
		NewValues:  newValues,
		Changes:    changes,
		ChangedAt:  msg.Timestamp,
	}, nil
}

func marshalOptional(values map[string]any) (*string, error) {
	if values == nil {
		return nil, nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}

// StorePublisher пишет аудит сразу в хранилище, когда брокер не настроен
type StorePublisher struct {
	auditRepo repository.ITaskAuditRepository
}

func NewStorePublisher(auditRepo repository.ITaskAuditRepository) *StorePublisher {
	return &StorePublisher{auditRepo: auditRepo}
}

func (p *StorePublisher) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	taskAudit, err := ConvertToTaskAudit(message)
	if err != nil {
		return err
	}
	return p.auditRepo.Create(ctx, taskAudit)
}
