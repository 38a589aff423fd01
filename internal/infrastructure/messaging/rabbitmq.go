package messaging

import (
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// RabbitMQ mantiene la conexión y el canal compartido.
type RabbitMQ struct {
	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *logger.Logger
}

// Dial abre conexión y canal contra url.
func Dial(url string, log *logger.Logger) (*RabbitMQ, error) {
	if log == nil {
		log = logger.Nop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("conectar a RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("abrir canal: %w", err)
	}
	log.Info().Msg("conectado a RabbitMQ")
	return &RabbitMQ{conn: conn, channel: ch, log: log}, nil
}

// DeclareExchange declara un exchange topic durable.
func (r *RabbitMQ) DeclareExchange(name string) error {
	return r.Channel().ExchangeDeclare(name, "topic", true, false, false, false, nil)
}

func (r *RabbitMQ) Channel() *amqp.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channel
}

// Close cierra canal y conexión.
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			r.log.Warn().Err(err).Msg("no se pudo cerrar el canal")
		}
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("cerrar conexión: %w", err)
		}
	}
	r.log.Info().Msg("conexión RabbitMQ cerrada")
	return nil
}
