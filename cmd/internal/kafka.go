package internal

import (
	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/taskhive/taskhive-api/internal"
	envvar "github.com/taskhive/taskhive-api/internal/envvar"
)

//KafkaProducer bundles the producer together with the topic events are
//published to.
type KafkaProducer struct {
	Producer *kafka.Producer
	Topic    string
}

//KafkaConsumer is the consumer counterpart used by the indexers
type KafkaConsumer struct {
	Consumer *kafka.Consumer
}

//NewKafkaProducer instantiates the Kafka producer using configuration
//defined in environment variables.
func NewKafkaProducer(conf *envvar.Configuration) (*KafkaProducer, error) {
	host, topic, err := kafkaSettings(conf)
	if err != nil {
		return nil, err
	}

	config := kafka.ConfigMap{
		"bootstrap.servers": host,
	}

	producer, err := kafka.NewProducer(&config)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "kafka.NewProducer")
	}

	return &KafkaProducer{
		Producer: producer,
		Topic:    topic,
	}, nil
}

//NewKafkaConsumer instantiates the Kafka consumer using configuration
//defined in environment variables, already subscribed to the events
//topic.
func NewKafkaConsumer(conf *envvar.Configuration, groupID string) (*KafkaConsumer, error) {
	host, topic, err := kafkaSettings(conf)
	if err != nil {
		return nil, err
	}

	config := kafka.ConfigMap{
		"bootstrap.servers":  host,
		"group.id":           groupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
	}

	consumer, err := kafka.NewConsumer(&config)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "kafka.NewConsumer")
	}

	if err := consumer.Subscribe(topic, nil); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "consumer.Subscribe")
	}

	return &KafkaConsumer{
		Consumer: consumer,
	}, nil
}

func kafkaSettings(conf *envvar.Configuration) (host, topic string, err error) {
	host, err = conf.Get("KAFKA_HOST")
	if err != nil {
		return "", "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get KAFKA_HOST")
	}

	topic, err = conf.Get("KAFKA_TOPIC")
	if err != nil {
		return "", "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conf.Get KAFKA_TOPIC")
	}

	return host, topic, nil
}
