package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE flows (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL CHECK (status IN ('draft', 'published', 'archived')),
				owner VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				published_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_flows_status ON flows(status);
			CREATE INDEX idx_flows_created_at ON flows(created_at);

			CREATE TABLE flow_steps (
				id UUID NOT NULL,
				flow_id UUID NOT NULL REFERENCES flows(id) ON DELETE CASCADE,
				step_type VARCHAR(50) NOT NULL,
				title VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				config JSONB,
				step_order INT NOT NULL,
				PRIMARY KEY (flow_id, id),
				UNIQUE (flow_id, step_order)
			);

			CREATE INDEX idx_flow_steps_flow_id ON flow_steps(flow_id);

			CREATE TABLE clients (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) NOT NULL,
				company VARCHAR(255) NOT NULL DEFAULT '',
				notes TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE onboardings (
				id UUID PRIMARY KEY,
				client_id UUID NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
				flow_id UUID NOT NULL REFERENCES flows(id),
				status VARCHAR(50) NOT NULL CHECK (status IN ('NOT_STARTED', 'IN_PROGRESS', 'COMPLETED')),
				portal_token VARCHAR(64) NOT NULL UNIQUE,
				priority VARCHAR(20) NOT NULL DEFAULT 'normal',
				due_date TIMESTAMP WITH TIME ZONE,
				last_activity_at TIMESTAMP WITH TIME ZONE NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_onboardings_client_id ON onboardings(client_id);
			CREATE INDEX idx_onboardings_flow_id ON onboardings(flow_id);
			CREATE INDEX idx_onboardings_status ON onboardings(status);
			CREATE INDEX idx_onboardings_last_activity_at ON onboardings(last_activity_at);

			CREATE TABLE step_progress (
				id UUID PRIMARY KEY,
				onboarding_id UUID NOT NULL REFERENCES onboardings(id) ON DELETE CASCADE,
				step_id UUID NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('NOT_STARTED', 'IN_PROGRESS', 'COMPLETED')),
				data JSONB,
				step_order INT NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_step_progress_onboarding_id ON step_progress(onboarding_id);

			CREATE TABLE notification_logs (
				id UUID PRIMARY KEY,
				onboarding_id UUID NOT NULL REFERENCES onboardings(id) ON DELETE CASCADE,
				notification_type VARCHAR(50) NOT NULL,
				recipient_email VARCHAR(255) NOT NULL,
				metadata JSONB,
				sent_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX idx_notification_logs_onboarding_type_sent
				ON notification_logs(onboarding_id, notification_type, sent_at);
		`,
	}
}
