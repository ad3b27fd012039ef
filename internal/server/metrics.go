package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	documentsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rag_documents_ingested_total",
		Help: "Documents successfully ingested.",
	})
	chunksStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rag_chunks_stored_total",
		Help: "Chunks written to the vector store.",
	})
	chatQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rag_chat_queries_total",
		Help: "Chat queries by outcome.",
	}, []string{"outcome"})
)
