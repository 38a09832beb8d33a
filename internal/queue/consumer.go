package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartShiftConsumer connects to RabbitMQ, declares the durable
// shift.events queue and consumes it forever, appending one
// notification line per event to logs/notifications.log. The actual
// email/SMS delivery happens outside this service; the log is the
// hand-off format the notifier tails. The function runs a reconnect
// loop with exponential backoff and keeps going through processing
// errors, rejecting bad messages without requeueing them.
func StartShiftConsumer() error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("shift-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn); err != nil {
			log.Printf("shift-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("shift-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(shiftQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(shiftQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Printf("shift-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
	var ev ShiftEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "notifications.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(notificationLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// notificationLine renders one human-friendly line per event in the
// shape downstream templating expects.
func notificationLine(ev ShiftEvent) string {
	switch ev.Type {
	case EventShiftClaimed:
		return fmt.Sprintf("[%s] Shift claimed | shift_id=%s | client=%q | psw=%q (id=%d) | date=%s %s-%s | address=%q\n",
			ev.OccurredAt, ev.ShiftID, ev.ClientFirstName, ev.PSWName, ev.PSWID,
			ev.ScheduledDate, ev.ScheduledStart, ev.ScheduledEnd, ev.PatientAddress)
	case EventShiftCompleted:
		return fmt.Sprintf("[%s] Shift completed | shift_id=%s | client=%q | psw=%q (id=%d) | date=%s\n",
			ev.OccurredAt, ev.ShiftID, ev.ClientFirstName, ev.PSWName, ev.PSWID, ev.ScheduledDate)
	case EventShiftStopped:
		return fmt.Sprintf("[%s] Shift stopped | shift_id=%s | client=%q | reason=%q\n",
			ev.OccurredAt, ev.ShiftID, ev.ClientFirstName, ev.Reason)
	default:
		return fmt.Sprintf("[%s] %s | shift_id=%s | client=%q | postal=%s | date=%s %s-%s\n",
			ev.OccurredAt, ev.Type, ev.ShiftID, ev.ClientFirstName, ev.PostalCode,
			ev.ScheduledDate, ev.ScheduledStart, ev.ScheduledEnd)
	}
}
