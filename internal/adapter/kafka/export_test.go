package kafka

var NewRecord = newRecord
