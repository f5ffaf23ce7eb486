package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "strconv"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartPackageConsumer connects to RabbitMQ, declares the two package
// event queues (durable), and starts consuming from both.  Each
// message is appended to logs/packages.log in a single-line,
// human-friendly format.  The function runs a reconnect loop with
// exponential backoff and keeps running across broker restarts; bad
// messages are rejected without requeue so the server keeps operating.
func StartPackageConsumer() error {
    url := brokerURL()
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("package-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn); err != nil {
            log.Printf("package-consumer: consume loop ended: %v; reconnecting", err)
            time.Sleep(2 * time.Second)
            continue
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
        log.Printf("package-consumer: set QoS failed: %v", err)
    }

    for _, name := range []string{PackageCreatedQueue, PackageUpdatedQueue} {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
    }

    created, err := ch.Consume(PackageCreatedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume %s: %w", PackageCreatedQueue, err)
    }
    updated, err := ch.Consume(PackageUpdatedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume %s: %w", PackageUpdatedQueue, err)
    }

    for {
        select {
        case d, ok := <-created:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            ackOrNack(d, handleCreated(d.Body))
        case d, ok := <-updated:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            ackOrNack(d, handleUpdated(d.Body))
        }
    }
}

func ackOrNack(d amqp.Delivery, err error) {
    if err != nil {
        log.Printf("package-consumer: handle message failed: %v", err)
        _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
        return
    }
    _ = d.Ack(false)
}

func handleCreated(body []byte) error {
    var ev PackageCreatedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    line := fmt.Sprintf("[%s] Package created | base_recno=%d | mageypackid=%q | name=%q | bundle_price=%s | rows=%d | by=%s\n",
        ev.CreatedAt, ev.BaseRecNo, ev.MageyPackID, ev.PackageName, ev.BundlePrice, ev.Rows, ev.CreatedBy)
    return appendAuditLine(line)
}

func handleUpdated(body []byte) error {
    var ev PackageUpdatedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    days := make([]string, 0, len(ev.UpdatedDays))
    for _, d := range ev.UpdatedDays {
        days = append(days, strconv.Itoa(d))
    }
    line := fmt.Sprintf("[%s] Package updated | mageypackid=%q | range=%d-%d | days=[%s] | partial=%t | by=%s\n",
        ev.UpdatedAt, ev.MageyPackID, ev.StartDay, ev.EndDay, strings.Join(days, ","), ev.Partial, ev.UpdatedBy)
    return appendAuditLine(line)
}

func appendAuditLine(line string) error {
    if err := os.MkdirAll("logs", 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    fpath := filepath.Join("logs", "packages.log")
    f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
