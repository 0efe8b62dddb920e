// этот код не зависит от приложения и нужен только для ручной проверки:
// он отправляет в кафку позицию заказа, которую должен подхватить консьюмер
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/asquebay/food-order-service/internal/model"

	"github.com/segmentio/kafka-go"
)

func main() {
	brokers := flag.String("brokers", "localhost:9092", "comma separated kafka brokers")
	topic := flag.String("topic", "order-items", "topic read by the service consumer")
	orderID := flag.Int64("order", 1, "order id")
	foodID := flag.Int64("food", 1, "food id")
	quantity := flag.Int("qty", 1, "quantity")
	price := flag.Int64("price", 450, "total price in minor units")
	flag.Parse()

	item := model.OrderItem{
		OrderID:     *orderID,
		FoodID:      *foodID,
		Quantity:    *quantity,
		TotalPrice:  *price,
		Ingredients: []string{"tomato sauce", "mozzarella"},
	}
	if err := item.Validate(); err != nil {
		log.Fatalf("invalid order item: %v", err)
	}

	message, err := json.Marshal(item)
	if err != nil {
		log.Fatalf("failed to marshal order item: %v", err)
	}

	// настройки писателя (producer-а)
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(*brokers, ",")...),
		Topic:                  *topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	defer writer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("Sending message to Kafka...")
	if err := writer.WriteMessages(ctx, kafka.Message{Value: message}); err != nil {
		log.Fatalf("Failed to write message: %v", err)
	}
	fmt.Println("Message sent successfully!")
}
