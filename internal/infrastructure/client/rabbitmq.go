package client

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/St1cky1/task-planner/internal/entity"
	amqp "github.com/rabbitmq/amqp091-go"
)

const AuditQueue = "task_audit_logs"

type RabbitMQClient struct {
	url string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	closed  bool
}

func NewRabbitMQClient(url string) (*RabbitMQClient, error) {
	c := &RabbitMQClient{url: url}
	if err := c.dial(); err != nil {
		return nil, err
	}
	return c, nil
}

// dial открывает соединение и канал публикации, вызывается под mu или до старта
func (c *RabbitMQClient) dial() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	queue, err := declareAuditQueue(channel)
	if err != nil {
		channel.Close()
		conn.Close()
		return err
	}

	c.conn = conn
	c.channel = channel
	c.queue = queue
	return nil
}

// ensureConnected переподключается, если брокер разорвал соединение или канал
func (c *RabbitMQClient) ensureConnected() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return amqp.ErrClosed
	}
	if c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed() {
		return nil
	}

	if c.conn != nil && !c.conn.IsClosed() {
		c.conn.Close()
	}
	if err := c.dial(); err != nil {
		return err
	}
	log.Println("Переподключение к RabbitMQ выполнено")
	return nil
}

func declareAuditQueue(ch *amqp.Channel) (amqp.Queue, error) {
	return ch.QueueDeclare(
		AuditQueue, // name
		true,       // durable
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	)
}

// Consume открывает отдельный канал для consumer'а, чтобы не мешать публикации
func (c *RabbitMQClient) Consume(consumerTag string) (<-chan amqp.Delivery, func() error, error) {
	if err := c.ensureConnected(); err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	conn, queueName := c.conn, c.queue.Name
	c.mu.Unlock()

	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}
	if _, err := declareAuditQueue(ch); err != nil {
		ch.Close()
		return nil, nil, err
	}
	if err := ch.Qos(10, 0, false); err != nil {
		ch.Close()
		return nil, nil, err
	}

	msgs, err := ch.Consume(
		queueName,   // queue
		consumerTag, // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		ch.Close()
		return nil, nil, err
	}
	return msgs, ch.Close, nil
}

func (c *RabbitMQClient) PublishAuditMessage(ctx context.Context, message *entity.AuditMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}
	if err := c.ensureConnected(); err != nil {
		return err
	}

	c.mu.Lock()
	channel, queueName := c.channel, c.queue.Name
	c.mu.Unlock()

	err = channel.PublishWithContext(
		ctx,
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return err
	}

	log.Printf("Отправлено сообщение в RabbitMQ: %s для задачи ID=%s", message.Action, message.EntityID)
	return nil
}

// HealthCheck проверяет, что соединение не закрыто
func (c *RabbitMQClient) HealthCheck(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.conn.IsClosed() {
		return amqp.ErrClosed
	}
	return nil
}

func (c *RabbitMQClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
