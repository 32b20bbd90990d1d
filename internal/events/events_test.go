package events

import "testing"

func TestNilClientIsNoOp(t *testing.T) {
	var c *Client

	if err := c.Publish(SubjectConversationStored, map[string]string{"threadId": "t1"}); err != nil {
		t.Errorf("nil client publish: %v", err)
	}
	c.Close()
}
