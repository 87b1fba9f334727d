package wmi

// PersistentEventConsumer is one resolved (consumer, filter, query, SID)
// tuple, the WMI persistence mechanism malware commonly abuses for
// boot/logon triggers: joins __EventConsumer <- __FilterToConsumerBinding
// -> __EventFilter by name.
type PersistentEventConsumer struct {
	ConsumerName string
	ConsumerType string
	FilterName   string
	Query        string
	QueryLang    string
	SID          string
}

// binding is the subset of a __FilterToConsumerBinding instance's values
// this join needs: the two object-path references it connects.
type binding struct {
	consumerRef string
	filterRef   string
	sid         string
}

// ResolvePersistence joins the three WMI-internal instance classes that
// together describe one permanent event subscription. Instances are
// supplied pre-decoded (Instance.Values), each keyed by its own instance
// path string, since __FilterToConsumerBinding's Consumer/Filter fields are
// themselves object-path references rather than WMI instance pointers.
func ResolvePersistence(consumers, filters map[string]Instance, bindings []Instance) []PersistentEventConsumer {
	var out []PersistentEventConsumer

	for _, b := range bindings {
		consumerRef, _ := b.Values["Consumer"].(string)
		filterRef, _ := b.Values["Filter"].(string)
		sid, _ := b.Values["__SID"].(string)

		consumer, ok := consumers[consumerRef]
		if !ok {
			continue
		}
		filter, ok := filters[filterRef]
		if !ok {
			continue
		}

		rec := PersistentEventConsumer{
			ConsumerName: stringValue(consumer, "Name"),
			ConsumerType: consumer.ClassName,
			FilterName:   stringValue(filter, "Name"),
			Query:        stringValue(filter, "Query"),
			QueryLang:    stringValue(filter, "QueryLanguage"),
			SID:          sid,
		}
		out = append(out, rec)
	}

	return out
}

func stringValue(inst Instance, key string) string {
	s, _ := inst.Values[key].(string)
	return s
}
